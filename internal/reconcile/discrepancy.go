package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// Review policy. These are fixed and independent of the matching tolerances.
const (
	LowConfidenceThreshold = 0.85
)

var (
	// MaterialAmount is the smallest unmatched amount worth flagging (exclusive).
	MaterialAmount = decimal.NewFromInt(100)
	// ErrorAmount is the unmatched amount above which a flag becomes an error.
	ErrorAmount = decimal.NewFromInt(500)
)

// AnalyzeDiscrepancies flags low-confidence matches, material unmatched
// amounts on either side, and records rejected during normalization.
func AnalyzeDiscrepancies(
	matches []domain.MatchResult,
	unmatchedLedger, unmatchedStatement []domain.Transaction,
	rejected []domain.RejectedRecord,
) []domain.Discrepancy {
	var out []domain.Discrepancy

	for _, m := range matches {
		if m.Confidence >= LowConfidenceThreshold {
			continue
		}
		out = append(out, domain.Discrepancy{
			Type:        domain.DiscrepancyLowConfidence,
			Severity:    domain.SeverityWarning,
			LedgerID:    m.Ledger.ID,
			StatementID: m.Statement.ID,
			Confidence:  ptr(m.Confidence),
			Message:     fmt.Sprintf("Low confidence match (%.0f%%). Please verify.", m.Confidence*100),
		})
	}

	out = appendUnmatched(out, unmatchedLedger, domain.DiscrepancyUnmatchedLedger, "Ledger transaction $%s not found in bank statement")
	out = appendUnmatched(out, unmatchedStatement, domain.DiscrepancyUnmatchedStatement, "Bank transaction $%s not found in ledger")

	for _, r := range rejected {
		out = append(out, domain.Discrepancy{
			Type:          domain.DiscrepancyInvalidRecord,
			Severity:      domain.SeverityError,
			Source:        r.Source,
			TransactionID: r.ID,
			Message:       fmt.Sprintf("%s record %d excluded from matching: %s", r.Source, r.Position, r.Reason),
		})
	}

	return out
}

func appendUnmatched(out []domain.Discrepancy, txns []domain.Transaction, kind domain.DiscrepancyType, format string) []domain.Discrepancy {
	for _, t := range txns {
		abs := t.Amount.Abs()
		if !abs.GreaterThan(MaterialAmount) {
			continue
		}

		severity := domain.SeverityWarning
		if abs.GreaterThan(ErrorAmount) {
			severity = domain.SeverityError
		}

		amount := t.Amount
		out = append(out, domain.Discrepancy{
			Type:          kind,
			Severity:      severity,
			Source:        t.Source,
			TransactionID: t.ID,
			Date:          t.Date.Format(domain.DateLayout),
			Amount:        &amount,
			Description:   t.Description,
			Message:       fmt.Sprintf(format, t.Amount.StringFixed(2)),
		})
	}
	return out
}
