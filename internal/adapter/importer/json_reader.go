package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iho/bankrecon/internal/adapter/record"
)

// ReadJSON reads an array of source-shaped records, keeping numbers exact.
func ReadJSON(r io.Reader) ([]record.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []record.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode json records: %w", err)
	}

	return records, nil
}
