package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iho/bankrecon/internal/adapter/record"
)

// Header synonyms, matched as substrings of the lowercased column name.
var (
	dateColumns        = []string{"date", "posted"}
	amountColumns      = []string{"amount", "total"}
	debitColumns       = []string{"debit", "withdrawal"}
	creditColumns      = []string{"credit", "deposit"}
	descriptionColumns = []string{"description", "memo", "details", "notes"}
	payeeColumns       = []string{"payee", "vendor", "merchant", "name"}
	checkColumns       = []string{"check", "chk"}
	referenceColumns   = []string{"reference", "ref", "fitid", "transaction id"}
	idColumns          = []string{"id"}
)

// ErrMissingColumns is returned when a CSV header lacks a date or amount column.
var ErrMissingColumns = errors.New("csv header is missing required columns")

// ColumnMapping maps canonical fields to CSV column positions; -1 means absent.
type ColumnMapping struct {
	Date        int
	Amount      int
	Debit       int
	Credit      int
	Description int
	Payee       int
	Check       int
	Reference   int
	ID          int
}

// DetectColumns inspects a header row and locates the known columns.
func DetectColumns(header []string) (ColumnMapping, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	m := ColumnMapping{
		Date:        find(cols, dateColumns, -1),
		Amount:      find(cols, amountColumns, -1),
		Debit:       find(cols, debitColumns, -1),
		Credit:      find(cols, creditColumns, -1),
		Description: find(cols, descriptionColumns, -1),
		Check:       find(cols, checkColumns, -1),
		Reference:   find(cols, referenceColumns, -1),
	}
	m.Payee = find(cols, payeeColumns, m.Description)
	m.ID = findExact(cols, idColumns)

	if m.Date < 0 || (m.Amount < 0 && (m.Debit < 0 || m.Credit < 0)) {
		return m, fmt.Errorf("%w: need a date column and an amount (or debit and credit) column, got %v", ErrMissingColumns, header)
	}

	return m, nil
}

// ReadCSV reads statement rows from a CSV stream with a header row.
func ReadCSV(r io.Reader) ([]record.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	mapping, err := DetectColumns(header)
	if err != nil {
		return nil, err
	}

	var records []record.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv line %d: %w", line, err)
		}
		if blank(row) {
			continue
		}

		rec, err := mapping.record(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (m ColumnMapping) record(row []string) (record.Record, error) {
	rec := record.Record{
		"date": cell(row, m.Date),
	}

	if m.Amount >= 0 {
		rec["amount"] = cell(row, m.Amount)
	} else {
		debit, err := record.ParseAmount(cell(row, m.Debit))
		if err != nil {
			return nil, err
		}
		credit, err := record.ParseAmount(cell(row, m.Credit))
		if err != nil {
			return nil, err
		}
		rec["amount"] = credit.Sub(debit.Abs())
	}

	setIfPresent(rec, "description", cell(row, m.Description))
	setIfPresent(rec, "name", cell(row, m.Payee))
	setIfPresent(rec, "check_number", cell(row, m.Check))
	setIfPresent(rec, "reference", cell(row, m.Reference))
	setIfPresent(rec, "id", cell(row, m.ID))

	return rec, nil
}

func find(cols, synonyms []string, skip int) int {
	for i, c := range cols {
		if i == skip {
			continue
		}
		for _, s := range synonyms {
			if strings.Contains(c, s) {
				return i
			}
		}
	}
	return -1
}

func findExact(cols, names []string) int {
	for i, c := range cols {
		for _, n := range names {
			if c == n {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func setIfPresent(rec record.Record, key, value string) {
	if value != "" {
		rec[key] = value
	}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
