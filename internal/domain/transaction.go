package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which side of a reconciliation a transaction came from.
type Source string

const (
	SourceLedger    Source = "ledger"
	SourceStatement Source = "statement"
)

// DateLayout is the canonical calendar date format used in reports.
const DateLayout = "2006-01-02"

// Transaction is the canonical form of a ledger or statement record.
type Transaction struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	CheckNumber string          `json:"check_number,omitempty"`
	Source      Source          `json:"source"`
	Amount      decimal.Decimal `json:"amount"`
}

// CalendarDate truncates t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	days := int(CalendarDate(a).Sub(CalendarDate(b)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// RejectedRecord is a source record that could not be turned into a Transaction.
type RejectedRecord struct {
	Source   Source `json:"source"`
	Position int    `json:"position"`
	ID       string `json:"id"`
	Reason   string `json:"reason"`
}
