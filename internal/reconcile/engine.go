// Package reconcile matches ledger transactions against a bank statement.
//
// An Engine runs three phases in fixed priority order (check number, exact
// amount/date, fuzzy) over two shrinking pools, then flags discrepancies and
// assembles an immutable report. A run is synchronous and performs no I/O.
package reconcile

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// Input is everything a single reconciliation needs.
type Input struct {
	AccountName            string
	StatementDate          string
	Ledger                 []domain.Transaction
	Statement              []domain.Transaction
	Rejected               []domain.RejectedRecord
	LedgerBeginningBalance decimal.Decimal
	LedgerEndingBalance    decimal.Decimal
	BankBeginningBalance   decimal.Decimal
	BankEndingBalance      decimal.Decimal
}

// Engine reconciles ledger and statement transactions.
type Engine struct {
	cfg    Config
	scorer *Scorer
	phases []Phase
	logger zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run summaries.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine validates cfg and creates an Engine.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer := NewScorer(cfg)
	e := &Engine{
		cfg:    cfg,
		scorer: scorer,
		logger: zerolog.Nop(),
		phases: []Phase{
			&checkNumberPhase{scorer: scorer},
			&exactAmountPhase{scorer: scorer, threshold: cfg.ConfidenceThreshold},
			&fuzzyPhase{scorer: scorer, threshold: cfg.ConfidenceThreshold, workers: cfg.Workers},
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Config returns the engine's matching parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Scorer returns the scorer used by the fuzzy phase.
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

// Reconcile matches in.Ledger against in.Statement and builds the report.
func (e *Engine) Reconcile(in Input) *domain.ReconciliationReport {
	e.logger.Info().
		Str("account", in.AccountName).
		Int("ledger_count", len(in.Ledger)).
		Int("statement_count", len(in.Statement)).
		Msg("starting reconciliation")

	ledger := NewPool(in.Ledger)
	statement := NewPool(in.Statement)

	var matches []domain.MatchResult
	for _, phase := range e.phases {
		found := phase.Match(ledger, statement)
		e.logger.Debug().
			Str("phase", string(phase.Method())).
			Int("matched", len(found)).
			Msg("phase complete")
		matches = append(matches, found...)
	}

	unmatchedLedger := ledger.Unclaimed()
	unmatchedStatement := statement.Unclaimed()

	report := &domain.ReconciliationReport{
		AccountName:            in.AccountName,
		StatementDate:          in.StatementDate,
		LedgerBeginningBalance: in.LedgerBeginningBalance,
		LedgerEndingBalance:    in.LedgerEndingBalance,
		BankBeginningBalance:   in.BankBeginningBalance,
		BankEndingBalance:      in.BankEndingBalance,
		Matches:                matches,
		UnmatchedLedger:        unmatchedLedger,
		UnmatchedStatement:     unmatchedStatement,
		Rejected:               in.Rejected,
		Discrepancies:          AnalyzeDiscrepancies(matches, unmatchedLedger, unmatchedStatement, in.Rejected),
	}

	e.logger.Info().
		Str("account", in.AccountName).
		Int("matched", report.MatchedCount()).
		Int("unmatched_ledger", report.UnmatchedLedgerCount()).
		Int("unmatched_statement", report.UnmatchedStatementCount()).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("reconciliation complete")

	return report
}
