// Package importer reads ledger exports and bank statements from files.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile reads a statement or ledger export, choosing the format by extension:
// .csv, .ofx/.qfx or .json.
func ReadFile(path string) (*Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err := ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Statement{Records: records}, nil
	case ".ofx", ".qfx":
		stmt, err := ReadOFX(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return stmt, nil
	case ".json":
		records, err := ReadJSON(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Statement{Records: records}, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q for %s", ext, path)
	}
}
