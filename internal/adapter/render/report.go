// Package render builds the serialized shape of a reconciliation run shared
// by the HTTP API, the gRPC API and the CLI.
package render

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// Summary is the headline block of a report.
type Summary struct {
	AccountName              string          `json:"account_name"`
	StatementDate            string          `json:"statement_date"`
	LedgerBeginningBalance   decimal.Decimal `json:"ledger_beginning_balance"`
	LedgerEndingBalance      decimal.Decimal `json:"ledger_ending_balance"`
	BankBeginningBalance     decimal.Decimal `json:"bank_beginning_balance"`
	BankEndingBalance        decimal.Decimal `json:"bank_ending_balance"`
	Difference               decimal.Decimal `json:"difference"`
	IsReconciled             bool            `json:"is_reconciled"`
	MatchedCount             int             `json:"matched_count"`
	MatchedAmount            decimal.Decimal `json:"matched_amount"`
	UnmatchedLedgerCount     int             `json:"unmatched_ledger_count"`
	UnmatchedLedgerAmount    decimal.Decimal `json:"unmatched_ledger_amount"`
	UnmatchedStatementCount  int             `json:"unmatched_statement_count"`
	UnmatchedStatementAmount decimal.Decimal `json:"unmatched_statement_amount"`
	RejectedCount            int             `json:"rejected_count"`
}

// Match is one matched pair.
type Match struct {
	LedgerID             string              `json:"ledger_id"`
	StatementID          string              `json:"statement_id"`
	LedgerDate           string              `json:"ledger_date"`
	StatementDate        string              `json:"statement_date"`
	LedgerAmount         decimal.Decimal     `json:"ledger_amount"`
	StatementAmount      decimal.Decimal     `json:"statement_amount"`
	LedgerDescription    string              `json:"ledger_description"`
	StatementDescription string              `json:"statement_description"`
	Confidence           float64             `json:"confidence"`
	MatchDetails         domain.MatchDetails `json:"match_details"`
}

// Transaction is an unmatched transaction.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Report is the full serialized report.
type Report struct {
	Summary            Summary                 `json:"summary"`
	Matched            []Match                 `json:"matched"`
	UnmatchedLedger    []Transaction           `json:"unmatched_ledger"`
	UnmatchedStatement []Transaction           `json:"unmatched_statement"`
	Discrepancies      []domain.Discrepancy    `json:"discrepancies"`
	Rejected           []domain.RejectedRecord `json:"rejected"`
}

// Run is a stored run with its report.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Report
}

// RunHeader is a run without its transaction lists, used by history listings.
type RunHeader struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Summary   Summary   `json:"summary"`
}

// FromRun renders a stored run.
func FromRun(run *domain.ReconciliationRun) *Run {
	return &Run{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		Report:    *FromReport(run.Report),
	}
}

// HeaderFromRun renders the summary of a stored run.
func HeaderFromRun(run *domain.ReconciliationRun) RunHeader {
	return RunHeader{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		Summary:   summaryOf(run.Report),
	}
}

// HeadersFromRuns renders a history listing.
func HeadersFromRuns(runs []*domain.ReconciliationRun) []RunHeader {
	result := make([]RunHeader, len(runs))
	for i, r := range runs {
		result[i] = HeaderFromRun(r)
	}
	return result
}

// FromReport renders a report. Lists are never nil so they encode as [].
func FromReport(r *domain.ReconciliationReport) *Report {
	out := &Report{
		Summary:            summaryOf(r),
		Matched:            make([]Match, len(r.Matches)),
		UnmatchedLedger:    transactions(r.UnmatchedLedger),
		UnmatchedStatement: transactions(r.UnmatchedStatement),
		Discrepancies:      r.Discrepancies,
		Rejected:           r.Rejected,
	}

	for i, m := range r.Matches {
		out.Matched[i] = Match{
			LedgerID:             m.Ledger.ID,
			StatementID:          m.Statement.ID,
			LedgerDate:           m.Ledger.Date.Format(domain.DateLayout),
			StatementDate:        m.Statement.Date.Format(domain.DateLayout),
			LedgerAmount:         m.Ledger.Amount,
			StatementAmount:      m.Statement.Amount,
			LedgerDescription:    m.Ledger.Description,
			StatementDescription: m.Statement.Description,
			Confidence:           round3(m.Confidence),
			MatchDetails:         m.Details,
		}
	}

	if out.Discrepancies == nil {
		out.Discrepancies = []domain.Discrepancy{}
	}
	if out.Rejected == nil {
		out.Rejected = []domain.RejectedRecord{}
	}

	return out
}

func summaryOf(r *domain.ReconciliationReport) Summary {
	return Summary{
		AccountName:              r.AccountName,
		StatementDate:            r.StatementDate,
		LedgerBeginningBalance:   r.LedgerBeginningBalance,
		LedgerEndingBalance:      r.LedgerEndingBalance,
		BankBeginningBalance:     r.BankBeginningBalance,
		BankEndingBalance:        r.BankEndingBalance,
		Difference:               r.Difference().Round(2),
		IsReconciled:             r.IsReconciled(),
		MatchedCount:             r.MatchedCount(),
		MatchedAmount:            r.MatchedAmount().Round(2),
		UnmatchedLedgerCount:     r.UnmatchedLedgerCount(),
		UnmatchedLedgerAmount:    r.UnmatchedLedgerAmount().Round(2),
		UnmatchedStatementCount:  r.UnmatchedStatementCount(),
		UnmatchedStatementAmount: r.UnmatchedStatementAmount().Round(2),
		RejectedCount:            len(r.Rejected),
	}
}

func transactions(txns []domain.Transaction) []Transaction {
	result := make([]Transaction, len(txns))
	for i, t := range txns {
		result[i] = Transaction{
			ID:          t.ID,
			Date:        t.Date.Format(domain.DateLayout),
			Amount:      t.Amount,
			Description: t.Description,
		}
	}
	return result
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
