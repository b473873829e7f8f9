package record

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2024, 9, 15, 13, 45, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"2024-01-05", "2024-01-05"},
		{"2024-01-05T10:11:12Z", "2024-01-05"},
		{"01/05/2024", "2024-01-05"},
		{"01-05-2024", "2024-01-05"},
		{"25/01/2024", "2024-01-25"},
		{"1/5/2024", "2024-01-05"},
		{"01/5/2024", "2024-01-05"},
		{"1-5-2024", "2024-01-05"},
		{"2024-1-5", "2024-01-05"},
		{"13/1/2024", "2024-01-13"},
		{"12/31/2024", "2024-12-31"},
		{time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC), "2024-01-05"},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if err != nil {
			t.Fatalf("ParseDate(%v) unexpected error: %v", tt.input, err)
		}
		if got.Format(domain.DateLayout) != tt.want {
			t.Fatalf("ParseDate(%v) = %s, want %s", tt.input, got.Format(domain.DateLayout), tt.want)
		}
	}
}

func TestParseDate_Errors(t *testing.T) {
	if _, err := ParseDate(""); !errors.Is(err, domain.ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate, got %v", err)
	}
	if _, err := ParseDate(nil); !errors.Is(err, domain.ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate for nil, got %v", err)
	}
	if _, err := ParseDate("31.02.2024"); !errors.Is(err, domain.ErrUnparseableDate) {
		t.Fatalf("expected ErrUnparseableDate, got %v", err)
	}
	if _, err := ParseDate(42); !errors.Is(err, domain.ErrUnparseableDate) {
		t.Fatalf("expected ErrUnparseableDate for int, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, "0"},
		{"", "0"},
		{"120.00", "120"},
		{"$1,234.56", "1234.56"},
		{"(45.10)", "-45.1"},
		{"-7", "-7"},
		{42.5, "42.5"},
		{7, "7"},
		{json.Number("19.99"), "19.99"},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		if err != nil {
			t.Fatalf("ParseAmount(%v) unexpected error: %v", tt.input, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("ParseAmount(%v) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := ParseAmount("twelve"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestNormalizer_LedgerAliases(t *testing.T) {
	n := NewNormalizer(DatePolicyReject, fixedNow)

	txn, err := n.Transaction(Record{
		"Id":          float64(812),
		"TxnDate":     "2024-02-10",
		"TotalAmt":    float64(99.95),
		"PrivateNote": "Staples order",
		"DocNumber":   "INV-77",
		"CheckNum":    "3301",
	}, domain.SourceLedger, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.ID != "812" {
		t.Errorf("expected id 812, got %q", txn.ID)
	}
	if txn.Date.Format(domain.DateLayout) != "2024-02-10" {
		t.Errorf("unexpected date %s", txn.Date)
	}
	if !txn.Amount.Equal(decimal.RequireFromString("99.95")) {
		t.Errorf("unexpected amount %s", txn.Amount)
	}
	if txn.Description != "Staples order" || txn.Reference != "INV-77" || txn.CheckNumber != "3301" {
		t.Errorf("unexpected text fields %+v", txn)
	}
	if txn.Source != domain.SourceLedger {
		t.Errorf("expected ledger source, got %s", txn.Source)
	}
}

func TestNormalizer_VendorTakesPrecedence(t *testing.T) {
	n := NewNormalizer(DatePolicyReject, fixedNow)

	txn, err := n.Transaction(Record{
		"id":     "L1",
		"date":   "2024-02-10",
		"amount": "10",
		"vendor": "Acme",
		"memo":   "monthly",
	}, domain.SourceLedger, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Description != "Acme" {
		t.Fatalf("expected vendor as description, got %q", txn.Description)
	}
}

func TestNormalizer_StatementDefaults(t *testing.T) {
	n := NewNormalizer(DatePolicyReject, fixedNow)

	txn, err := n.Transaction(Record{"date": "03/04/2024"}, domain.SourceStatement, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.ID != "statement-7" {
		t.Errorf("expected synthesized id, got %q", txn.ID)
	}
	if !txn.Amount.IsZero() {
		t.Errorf("expected zero amount, got %s", txn.Amount)
	}
	if txn.Description != "" || txn.Reference != "" || txn.CheckNumber != "" {
		t.Errorf("expected empty text fields, got %+v", txn)
	}
	if txn.Date.Format(domain.DateLayout) != "2024-03-04" {
		t.Errorf("expected MM/DD/YYYY interpretation, got %s", txn.Date.Format(domain.DateLayout))
	}
}

func TestNormalizer_StatementReferenceAsID(t *testing.T) {
	n := NewNormalizer(DatePolicyReject, fixedNow)

	txn, err := n.Transaction(Record{"reference": "REF-9", "date": "2024-03-04", "amount": "1"}, domain.SourceStatement, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID != "REF-9" || txn.Reference != "REF-9" {
		t.Fatalf("expected reference to back the id, got %+v", txn)
	}
}

func TestNormalizer_DatePolicy(t *testing.T) {
	records := []Record{
		{"id": "ok", "date": "2024-05-01", "amount": "5"},
		{"id": "bad", "date": "someday", "amount": "5"},
		{"id": "missing", "amount": "5"},
		{"id": "badamount", "date": "2024-05-01", "amount": "n/a"},
	}

	t.Run("reject", func(t *testing.T) {
		n := NewNormalizer(DatePolicyReject, fixedNow)
		txns, rejected := n.Normalize(records, domain.SourceStatement)

		if len(txns) != 1 || txns[0].ID != "ok" {
			t.Fatalf("expected only the valid record, got %+v", txns)
		}
		if len(rejected) != 3 {
			t.Fatalf("expected 3 rejected records, got %+v", rejected)
		}
		if rejected[0].ID != "bad" || rejected[0].Position != 2 {
			t.Fatalf("unexpected first rejection %+v", rejected[0])
		}
	})

	t.Run("today", func(t *testing.T) {
		n := NewNormalizer(DatePolicyToday, fixedNow)
		txns, rejected := n.Normalize(records, domain.SourceStatement)

		if len(txns) != 3 {
			t.Fatalf("expected 3 transactions, got %+v", txns)
		}
		if len(rejected) != 1 || rejected[0].ID != "badamount" {
			t.Fatalf("expected malformed amount to stay rejected, got %+v", rejected)
		}
		if got := txns[1].Date.Format(domain.DateLayout); got != "2024-09-15" {
			t.Fatalf("expected fallback to today, got %s", got)
		}
	})
}

func TestNormalizer_UnpaddedDatesAreKept(t *testing.T) {
	records := []Record{
		{"date": "1/5/2024", "amount": "120.00"},
		{"date": "2/9/2024", "amount": "-8.25"},
	}

	txns, rejected := NewNormalizer(DatePolicyReject, fixedNow).Normalize(records, domain.SourceStatement)

	if len(rejected) != 0 {
		t.Fatalf("expected no rejections, got %+v", rejected)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %+v", txns)
	}
	if got := txns[1].Date.Format(domain.DateLayout); got != "2024-02-09" {
		t.Fatalf("expected 2024-02-09, got %s", got)
	}
}

func TestNormalizer_DuplicateIDsAreSuffixed(t *testing.T) {
	records := []Record{
		{"reference": "ACH", "date": "2024-01-05", "amount": "10"},
		{"reference": "ACH", "date": "2024-01-06", "amount": "20"},
		{"id": "ACH-3", "date": "2024-01-07", "amount": "30"},
		{"reference": "ACH", "date": "2024-01-08", "amount": "40"},
		{"reference": "ACH", "date": "2024-01-09", "amount": "50"},
	}

	txns, rejected := NewNormalizer(DatePolicyReject, fixedNow).Normalize(records, domain.SourceStatement)
	if len(rejected) != 0 {
		t.Fatalf("unexpected rejections %+v", rejected)
	}

	want := []string{"ACH", "ACH-2", "ACH-3", "ACH-4", "ACH-5"}
	for i, txn := range txns {
		if txn.ID != want[i] {
			t.Errorf("txns[%d].ID = %q, want %q", i, txn.ID, want[i])
		}
		if txn.Reference != "ACH" && i != 2 {
			t.Errorf("txns[%d] reference changed to %q", i, txn.Reference)
		}
	}

	clash := []Record{
		{"id": "X-3", "date": "2024-01-05", "amount": "1"},
		{"id": "X", "date": "2024-01-05", "amount": "1"},
		{"id": "X", "date": "2024-01-05", "amount": "1"},
	}
	txns, _ = NewNormalizer(DatePolicyReject, fixedNow).Normalize(clash, domain.SourceLedger)
	seen := make(map[string]bool)
	for _, txn := range txns {
		if seen[txn.ID] {
			t.Fatalf("duplicate id %q in %+v", txn.ID, txns)
		}
		seen[txn.ID] = true
	}
}

func TestParseDatePolicy(t *testing.T) {
	if p, err := ParseDatePolicy(""); err != nil || p != DatePolicyReject {
		t.Fatalf("expected default reject policy, got %q %v", p, err)
	}
	if _, err := ParseDatePolicy("guess"); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
