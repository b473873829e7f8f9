package domain

import "github.com/shopspring/decimal"

// DiscrepancyType classifies a condition that needs human review.
type DiscrepancyType string

const (
	DiscrepancyLowConfidence      DiscrepancyType = "low_confidence_match"
	DiscrepancyUnmatchedLedger    DiscrepancyType = "unmatched_ledger"
	DiscrepancyUnmatchedStatement DiscrepancyType = "unmatched_statement"
	DiscrepancyInvalidRecord      DiscrepancyType = "invalid_record"
)

// Severity of a discrepancy.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Discrepancy is a flagged condition produced after matching.
type Discrepancy struct {
	Type          DiscrepancyType  `json:"type"`
	Severity      Severity         `json:"severity"`
	Message       string           `json:"message"`
	LedgerID      string           `json:"ledger_id,omitempty"`
	StatementID   string           `json:"statement_id,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Date          string           `json:"date,omitempty"`
	Description   string           `json:"description,omitempty"`
	Source        Source           `json:"source,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Confidence    *float64         `json:"confidence,omitempty"`
}
