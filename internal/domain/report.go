package domain

import "github.com/shopspring/decimal"

// ReconciliationReport is the immutable output of a single reconciliation.
type ReconciliationReport struct {
	AccountName            string           `json:"account_name"`
	StatementDate          string           `json:"statement_date"`
	LedgerBeginningBalance decimal.Decimal  `json:"ledger_beginning_balance"`
	LedgerEndingBalance    decimal.Decimal  `json:"ledger_ending_balance"`
	BankBeginningBalance   decimal.Decimal  `json:"bank_beginning_balance"`
	BankEndingBalance      decimal.Decimal  `json:"bank_ending_balance"`
	Matches                []MatchResult    `json:"matches"`
	UnmatchedLedger        []Transaction    `json:"unmatched_ledger"`
	UnmatchedStatement     []Transaction    `json:"unmatched_statement"`
	Discrepancies          []Discrepancy    `json:"discrepancies"`
	Rejected               []RejectedRecord `json:"rejected,omitempty"`
}

// MatchedCount returns the number of matched pairs.
func (r *ReconciliationReport) MatchedCount() int {
	return len(r.Matches)
}

// MatchedAmount sums the ledger side of every matched pair.
func (r *ReconciliationReport) MatchedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, m := range r.Matches {
		total = total.Add(m.Ledger.Amount)
	}
	return total
}

func (r *ReconciliationReport) UnmatchedLedgerCount() int {
	return len(r.UnmatchedLedger)
}

func (r *ReconciliationReport) UnmatchedLedgerAmount() decimal.Decimal {
	return sumAmounts(r.UnmatchedLedger)
}

func (r *ReconciliationReport) UnmatchedStatementCount() int {
	return len(r.UnmatchedStatement)
}

func (r *ReconciliationReport) UnmatchedStatementAmount() decimal.Decimal {
	return sumAmounts(r.UnmatchedStatement)
}

// Difference is the statement ending balance minus the ledger ending balance.
func (r *ReconciliationReport) Difference() decimal.Decimal {
	return r.BankEndingBalance.Sub(r.LedgerEndingBalance)
}

// IsReconciled reports whether every transaction on both sides was matched.
func (r *ReconciliationReport) IsReconciled() bool {
	return len(r.UnmatchedLedger) == 0 && len(r.UnmatchedStatement) == 0
}

func sumAmounts(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}
