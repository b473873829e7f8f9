package reconcile_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/reconcile"
)

func newEngine(t *testing.T, mutate ...func(*reconcile.Config)) *reconcile.Engine {
	t.Helper()

	cfg := reconcile.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	engine, err := reconcile.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*reconcile.Config)
	}{
		{"negative date tolerance", func(c *reconcile.Config) { c.DateToleranceDays = -1 }},
		{"negative amount tolerance", func(c *reconcile.Config) { c.AmountTolerance = decimal.NewFromFloat(-0.01) }},
		{"confidence above one", func(c *reconcile.Config) { c.ConfidenceThreshold = 1.5 }},
		{"negative description threshold", func(c *reconcile.Config) { c.DescriptionThreshold = -0.1 }},
		{"zero workers", func(c *reconcile.Config) { c.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := reconcile.DefaultConfig()
			tt.mutate(&cfg)

			if _, err := reconcile.NewEngine(cfg); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestReconcile_ExactAmountMatch(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		AccountName: "Checking",
		Ledger:      []domain.Transaction{ledgerTxn("l1", "2024-01-05", "120.00", "Office Depot")},
		Statement:   []domain.Transaction{statementTxn("s1", "2024-01-06", "120.00", "OFFICE DEPOT POS 4821")},
	})

	m := onlyMatch(t, report)
	if m.Details.Method != domain.MatchMethodExactAmount {
		t.Fatalf("expected exact amount match, got %s", m.Details.Method)
	}
	if *m.Details.DateDiffDays != 1 {
		t.Errorf("expected 1 day apart, got %d", *m.Details.DateDiffDays)
	}
	if !near(m.Confidence, 0.9625) {
		t.Errorf("expected confidence 0.9625, got %v", m.Confidence)
	}
	if !report.IsReconciled() || len(report.Discrepancies) != 0 {
		t.Fatalf("expected a clean reconciliation, got %+v", report.Discrepancies)
	}
}

func TestReconcile_CheckNumberMatch(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		Ledger:    []domain.Transaction{withCheck(ledgerTxn("l1", "2024-02-01", "250.00", "Landlord"), "1042")},
		Statement: []domain.Transaction{withCheck(statementTxn("s1", "2024-02-03", "250.00", "CHECK"), "1042")},
	})

	m := onlyMatch(t, report)
	if m.Details.Method != domain.MatchMethodCheckNumber || m.Details.CheckNumber != "1042" {
		t.Fatalf("expected check number 1042 match, got %+v", m.Details)
	}
	if m.Confidence != 0.99 {
		t.Fatalf("expected confidence 0.99, got %v", m.Confidence)
	}
}

func TestReconcile_CheckNumberRequiresAmount(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		Ledger:    []domain.Transaction{withCheck(ledgerTxn("l1", "2024-02-01", "250.00", "Landlord"), "1042")},
		Statement: []domain.Transaction{withCheck(statementTxn("s1", "2024-02-01", "25.00", "Landlord"), "1042")},
	})

	for _, m := range report.Matches {
		if m.Details.Method == domain.MatchMethodCheckNumber {
			t.Fatalf("check number phase matched different amounts: %+v", m)
		}
	}
}

func TestReconcile_PhasePriority(t *testing.T) {
	engine := newEngine(t)

	l := withCheck(ledgerTxn("l1", "2024-02-01", "310.00", "Rent for February"), "2001")
	s := withCheck(statementTxn("s1", "2024-02-11", "310.00", "ZZQX"), "2001")

	// Without the check number the pair cannot reach the threshold.
	fuzzyOnly, _ := engine.Scorer().Score(l, s)
	if fuzzyOnly >= engine.Config().ConfidenceThreshold {
		t.Fatalf("fixture too similar: fuzzy score %v", fuzzyOnly)
	}

	report := engine.Reconcile(reconcile.Input{
		Ledger:    []domain.Transaction{l},
		Statement: []domain.Transaction{s},
	})

	if m := onlyMatch(t, report); m.Details.Method != domain.MatchMethodCheckNumber {
		t.Fatalf("expected check number phase to win, got %s", m.Details.Method)
	}
}

func TestReconcile_NoMatchSeverityBoundary(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		amount   string
		severity domain.Severity
	}{
		{"500.00", domain.SeverityWarning},
		{"500.01", domain.SeverityError},
		{"-500.01", domain.SeverityError},
		{"100.01", domain.SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			report := engine.Reconcile(reconcile.Input{
				Ledger:    []domain.Transaction{ledgerTxn("l1", "2024-03-10", tt.amount, "Consulting")},
				Statement: []domain.Transaction{statementTxn("s1", "2024-03-10", "50.00", "Coffee")},
			})

			if len(report.Matches) != 0 || len(report.UnmatchedLedger) != 1 || len(report.UnmatchedStatement) != 1 {
				t.Fatalf("expected both records unmatched, got %+v", report)
			}
			// The statement side is below the material amount.
			if len(report.Discrepancies) != 1 {
				t.Fatalf("expected 1 discrepancy, got %+v", report.Discrepancies)
			}

			d := report.Discrepancies[0]
			if d.Type != domain.DiscrepancyUnmatchedLedger || d.TransactionID != "l1" {
				t.Errorf("unexpected discrepancy %+v", d)
			}
			if d.Severity != tt.severity {
				t.Errorf("severity = %s, want %s", d.Severity, tt.severity)
			}
			if report.IsReconciled() {
				t.Error("expected report to be unreconciled")
			}
		})
	}
}

func TestReconcile_UnmatchedAtMaterialBoundary(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		Statement: []domain.Transaction{
			statementTxn("s1", "2024-03-10", "100.00", "Fee"),
			statementTxn("s2", "2024-03-10", "-100.01", "Fee"),
		},
	})

	if len(report.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %+v", report.Discrepancies)
	}
	d := report.Discrepancies[0]
	if d.Type != domain.DiscrepancyUnmatchedStatement || d.TransactionID != "s2" {
		t.Errorf("unexpected discrepancy %+v", d)
	}
	if d.Message != "Bank transaction $-100.01 not found in ledger" {
		t.Errorf("unexpected message %q", d.Message)
	}
}

func TestReconcile_EmptyDescriptions(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		Ledger:    []domain.Transaction{ledgerTxn("l1", "2024-04-01", "75.00", "")},
		Statement: []domain.Transaction{statementTxn("s1", "2024-04-01", "75.00", "")},
	})

	m := onlyMatch(t, report)
	if *m.Details.DescriptionScore != 0.3 {
		t.Errorf("expected neutral description score, got %v", *m.Details.DescriptionScore)
	}
	// 0.7 + 0.15*1.0 + 0.15*0.3
	if !near(m.Confidence, 0.895) {
		t.Errorf("expected confidence 0.895, got %v", m.Confidence)
	}
}

func TestReconcile_FuzzyMatchIsFlaggedWhenLowConfidence(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		Ledger:    []domain.Transaction{ledgerTxn("l1", "2024-01-05", "100.00", "Office Depot")},
		Statement: []domain.Transaction{statementTxn("s1", "2024-01-06", "100.50", "OFFICE DEPOT")},
	})

	m := onlyMatch(t, report)
	if m.Details.Method != domain.MatchMethodFuzzy || !near(m.Confidence, 0.845) {
		t.Fatalf("expected fuzzy match at 0.845, got %s %v", m.Details.Method, m.Confidence)
	}

	if len(report.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %+v", report.Discrepancies)
	}
	d := report.Discrepancies[0]
	if d.Type != domain.DiscrepancyLowConfidence || d.Severity != domain.SeverityWarning {
		t.Errorf("unexpected discrepancy %+v", d)
	}
	if !strings.Contains(d.Message, "Low confidence match (8") || !strings.Contains(d.Message, "Please verify.") {
		t.Errorf("unexpected message %q", d.Message)
	}
}

func TestReconcile_TieBreakFirstSeen(t *testing.T) {
	engine := newEngine(t)

	l := ledgerTxn("l1", "2024-05-01", "40.00", "Lunch")
	a := statementTxn("a", "2024-05-01", "40.00", "Lunch")
	b := statementTxn("b", "2024-05-01", "40.00", "Lunch")

	report := engine.Reconcile(reconcile.Input{Ledger: []domain.Transaction{l}, Statement: []domain.Transaction{a, b}})
	if m := onlyMatch(t, report); m.Statement.ID != "a" {
		t.Fatalf("expected first candidate a, got %s", m.Statement.ID)
	}

	report = engine.Reconcile(reconcile.Input{Ledger: []domain.Transaction{l}, Statement: []domain.Transaction{b, a}})
	if m := onlyMatch(t, report); m.Statement.ID != "b" {
		t.Fatalf("expected first candidate b, got %s", m.Statement.ID)
	}
}

func TestReconcile_NoDoubleMatching(t *testing.T) {
	engine := newEngine(t)

	// Duplicate ids on both sides: positions, not ids, identify records.
	ledger := []domain.Transaction{
		ledgerTxn("dup", "2024-06-01", "10.00", "Parking"),
		ledgerTxn("dup", "2024-06-01", "10.00", "Parking"),
		withCheck(ledgerTxn("c1", "2024-06-02", "99.00", "Check"), "7"),
	}
	statement := []domain.Transaction{
		statementTxn("dup", "2024-06-01", "10.00", "PARKING"),
		withCheck(statementTxn("c1", "2024-06-02", "99.00", "Check"), "7"),
		withCheck(statementTxn("c2", "2024-06-02", "99.00", "Check"), "7"),
	}

	report := engine.Reconcile(reconcile.Input{Ledger: ledger, Statement: statement})
	assertCountInvariant(t, report, len(ledger), len(statement))
	if report.MatchedCount() != 2 {
		t.Fatalf("expected 2 matches, got %d", report.MatchedCount())
	}
}

func TestReconcile_Properties(t *testing.T) {
	ledger, statement := mixedDataset(60)

	engine := newEngine(t)
	first := engine.Reconcile(reconcile.Input{AccountName: "Ops", Ledger: ledger, Statement: statement})
	second := engine.Reconcile(reconcile.Input{AccountName: "Ops", Ledger: ledger, Statement: statement})

	t.Run("count invariant", func(t *testing.T) {
		assertCountInvariant(t, first, len(ledger), len(statement))
	})

	t.Run("confidence bounds", func(t *testing.T) {
		for _, m := range first.Matches {
			if m.Confidence < 0 || m.Confidence > 1 {
				t.Fatalf("confidence %v out of bounds", m.Confidence)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		if !reflect.DeepEqual(first, second) {
			t.Fatal("two runs over the same input differ")
		}
	})

	t.Run("no matches hidden in leftovers", func(t *testing.T) {
		rerun := engine.Reconcile(reconcile.Input{Ledger: first.UnmatchedLedger, Statement: first.UnmatchedStatement})
		if len(rerun.Matches) != 0 {
			t.Fatalf("leftovers still matched: %+v", rerun.Matches)
		}
	})

	t.Run("parallel scoring matches sequential", func(t *testing.T) {
		parallel := newEngine(t, func(c *reconcile.Config) { c.Workers = 4 })
		got := parallel.Reconcile(reconcile.Input{AccountName: "Ops", Ledger: ledger, Statement: statement})
		if !reflect.DeepEqual(first, got) {
			t.Fatal("parallel scoring changed the report")
		}
	})
}

func TestReconcile_DerivedTotals(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		AccountName:         "Checking",
		StatementDate:       "2024-01-31",
		LedgerEndingBalance: decimal.RequireFromString("1000.00"),
		BankEndingBalance:   decimal.RequireFromString("1080.25"),
		Ledger: []domain.Transaction{
			ledgerTxn("l1", "2024-01-05", "120.00", "Office Depot"),
			ledgerTxn("l2", "2024-01-09", "-30.00", "Fees"),
		},
		Statement: []domain.Transaction{
			statementTxn("s1", "2024-01-05", "120.00", "OFFICE DEPOT"),
			statementTxn("s2", "2024-01-20", "80.25", "Interest"),
		},
	})

	if report.MatchedCount() != 1 {
		t.Fatalf("expected 1 match, got %d", report.MatchedCount())
	}
	amounts := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"matched", report.MatchedAmount(), "120"},
		{"unmatched ledger", report.UnmatchedLedgerAmount(), "-30"},
		{"unmatched statement", report.UnmatchedStatementAmount(), "80.25"},
		{"difference", report.Difference(), "80.25"},
	}
	for _, a := range amounts {
		if !a.got.Equal(decimal.RequireFromString(a.want)) {
			t.Errorf("%s amount = %s, want %s", a.name, a.got, a.want)
		}
	}
	if report.StatementDate != "2024-01-31" {
		t.Errorf("statement date = %q", report.StatementDate)
	}
}

func TestReconcile_RejectedRecordsAreReported(t *testing.T) {
	engine := newEngine(t)

	report := engine.Reconcile(reconcile.Input{
		Rejected: []domain.RejectedRecord{
			{Source: domain.SourceStatement, Position: 3, ID: "s3", Reason: "unparseable date: \"31.02\""},
		},
	})

	if len(report.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %+v", report.Discrepancies)
	}
	d := report.Discrepancies[0]
	if d.Type != domain.DiscrepancyInvalidRecord || d.Severity != domain.SeverityError || d.TransactionID != "s3" {
		t.Errorf("unexpected discrepancy %+v", d)
	}
	// Rejected records are not part of the matching pools.
	if !report.IsReconciled() {
		t.Error("expected report to reconcile")
	}
}

func assertCountInvariant(t *testing.T, report *domain.ReconciliationReport, ledgerCount, statementCount int) {
	t.Helper()

	got := report.MatchedCount()*2 + report.UnmatchedLedgerCount() + report.UnmatchedStatementCount()
	if got != ledgerCount+statementCount {
		t.Fatalf("records accounted for = %d, want %d", got, ledgerCount+statementCount)
	}

	type key struct {
		source domain.Source
		id     string
		desc   string
	}
	seen := map[key]int{}
	for _, m := range report.Matches {
		seen[key{m.Ledger.Source, m.Ledger.ID, m.Ledger.Description}]++
		seen[key{m.Statement.Source, m.Statement.ID, m.Statement.Description}]++
	}
	for k, n := range seen {
		if n != 1 {
			t.Errorf("transaction %+v matched %d times", k, n)
		}
	}
}

func onlyMatch(t *testing.T, report *domain.ReconciliationReport) domain.MatchResult {
	t.Helper()

	if len(report.Matches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d: %+v", len(report.Matches), report.Matches)
	}
	return report.Matches[0]
}

// mixedDataset builds records that exercise every phase: check numbers,
// exact amounts with date drift, rounding differences and pure noise.
func mixedDataset(n int) ([]domain.Transaction, []domain.Transaction) {
	var ledger, statement []domain.Transaction

	for i := 0; i < n; i++ {
		day := fmt.Sprintf("2024-07-%02d", i%28+1)
		drift := fmt.Sprintf("2024-07-%02d", (i+i%3)%28+1)
		amount := fmt.Sprintf("%d.%02d", 10+i*7, i%100)
		desc := fmt.Sprintf("Vendor %d", i%9)

		l := ledgerTxn(fmt.Sprintf("l%d", i), day, amount, desc)
		s := statementTxn(fmt.Sprintf("s%d", i), drift, amount, "POS "+desc+" 99887")

		switch i % 5 {
		case 0:
			l = withCheck(l, fmt.Sprintf("%d", 1000+i))
			s = withCheck(s, fmt.Sprintf("%d", 1000+i))
		case 3:
			s.Amount = s.Amount.Add(decimal.RequireFromString("0.40"))
		case 4:
			s.Amount = s.Amount.Mul(decimal.NewFromInt(3))
			s.Description = "Unrelated"
		}

		ledger = append(ledger, l)
		statement = append(statement, s)
	}

	return ledger, statement
}
