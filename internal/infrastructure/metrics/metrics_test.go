package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

func TestNewWithRegistryRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegistry(registry)

	if m.Runs == nil || m.HTTPRequests == nil || m.Discrepancies == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.RecordFailure()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecordRun(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	amount := decimal.NewFromInt(600)
	report := &domain.ReconciliationReport{
		LedgerEndingBalance: decimal.NewFromInt(1000),
		BankEndingBalance:   decimal.NewFromInt(400),
		Matches: []domain.MatchResult{
			{Details: domain.MatchDetails{Method: domain.MatchMethodCheckNumber}, Confidence: 0.99},
			{Details: domain.MatchDetails{Method: domain.MatchMethodFuzzy}, Confidence: 0.8},
		},
		UnmatchedLedger: []domain.Transaction{{ID: "L1", Amount: amount, Source: domain.SourceLedger}},
		Discrepancies: []domain.Discrepancy{
			{Type: domain.DiscrepancyUnmatchedLedger, Severity: domain.SeverityError, Amount: &amount},
			{Type: domain.DiscrepancyLowConfidence, Severity: domain.SeverityWarning},
		},
		Rejected: []domain.RejectedRecord{{Source: domain.SourceStatement, Position: 3}},
	}

	m.RecordRun(report, 250*time.Millisecond)

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("unreconciled")); got != 1 {
		t.Fatalf("expected 1 unreconciled run, got %v", got)
	}
	if got := testutil.ToFloat64(m.Matches.WithLabelValues("fuzzy")); got != 1 {
		t.Fatalf("expected 1 fuzzy match, got %v", got)
	}
	if got := testutil.ToFloat64(m.Unmatched.WithLabelValues("ledger")); got != 1 {
		t.Fatalf("expected 1 unmatched ledger, got %v", got)
	}
	if got := testutil.ToFloat64(m.Unmatched.WithLabelValues("statement")); got != 0 {
		t.Fatalf("expected 0 unmatched statement, got %v", got)
	}
	if got := testutil.ToFloat64(m.Discrepancies.WithLabelValues("unmatched_ledger", "error")); got != 1 {
		t.Fatalf("expected 1 error discrepancy, got %v", got)
	}
	if got := testutil.ToFloat64(m.RejectedRecords.WithLabelValues("statement")); got != 1 {
		t.Fatalf("expected 1 rejected statement record, got %v", got)
	}
}
