package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/adapter/record"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/reconcile"
)

// MatchOverrides replaces individual matching parameters for one run.
type MatchOverrides struct {
	DateToleranceDays    *int
	AmountTolerance      *decimal.Decimal
	DescriptionThreshold *float64
	ConfidenceThreshold  *float64
	DatePolicy           string
}

// ReconcileInput is a reconciliation where the caller supplies both sides.
type ReconcileInput struct {
	AccountName            string
	StatementDate          string
	LedgerRecords          []record.Record
	StatementRecords       []record.Record
	LedgerBeginningBalance decimal.Decimal
	LedgerEndingBalance    decimal.Decimal
	BankBeginningBalance   decimal.Decimal
	BankEndingBalance      decimal.Decimal
	Overrides              *MatchOverrides
}

// ReconcileAccountInput is a reconciliation whose ledger side is read from the ledger store.
type ReconcileAccountInput struct {
	AccountName          string
	StatementDate        string
	From                 time.Time
	To                   time.Time
	StatementRecords     []record.Record
	BankBeginningBalance decimal.Decimal
	BankEndingBalance    decimal.Decimal
	Overrides            *MatchOverrides
}

// ReconciliationUseCase runs reconciliations and keeps their results.
type ReconciliationUseCase struct {
	engine     *reconcile.Engine
	datePolicy record.DatePolicy
	ledger     LedgerSource
	reports    ReportStore
	idGen      IDGenerator
	recorder   Recorder
	reportTTL  time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a ReconciliationUseCase.
type Option func(*ReconciliationUseCase)

// WithLedgerSource enables account reconciliations against a ledger store.
func WithLedgerSource(ledger LedgerSource) Option {
	return func(uc *ReconciliationUseCase) { uc.ledger = ledger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(uc *ReconciliationUseCase) { uc.recorder = r }
}

// WithReportTTL sets how long finished runs are kept.
func WithReportTTL(ttl time.Duration) Option {
	return func(uc *ReconciliationUseCase) { uc.reportTTL = ttl }
}

// WithDatePolicy sets the default handling of records without a usable date.
func WithDatePolicy(p record.DatePolicy) Option {
	return func(uc *ReconciliationUseCase) { uc.datePolicy = p }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *ReconciliationUseCase) { uc.logger = l }
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *ReconciliationUseCase) { uc.now = now }
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(
	engine *reconcile.Engine,
	reports ReportStore,
	idGen IDGenerator,
	opts ...Option,
) *ReconciliationUseCase {
	uc := &ReconciliationUseCase{
		engine:     engine,
		datePolicy: record.DatePolicyReject,
		reports:    reports,
		idGen:      idGen,
		recorder:   nopRecorder{},
		reportTTL:  DefaultReportTTL,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Reconcile normalizes both supplied sides, runs the engine and stores the run.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, input ReconcileInput) (*domain.ReconciliationRun, error) {
	if err := validateHeader(input.AccountName, input.StatementDate); err != nil {
		return nil, err
	}
	if err := domain.ValidateRecordCount(domain.SourceLedger, len(input.LedgerRecords)); err != nil {
		return nil, err
	}
	if err := domain.ValidateRecordCount(domain.SourceStatement, len(input.StatementRecords)); err != nil {
		return nil, err
	}

	engine, policy, err := uc.resolve(input.Overrides)
	if err != nil {
		return nil, err
	}

	normalizer := record.NewNormalizer(policy, uc.now)
	ledger, rejectedLedger := normalizer.Normalize(input.LedgerRecords, domain.SourceLedger)
	statement, rejectedStatement := normalizer.Normalize(input.StatementRecords, domain.SourceStatement)

	return uc.run(ctx, engine, reconcile.Input{
		AccountName:            input.AccountName,
		StatementDate:          input.StatementDate,
		Ledger:                 ledger,
		Statement:              statement,
		Rejected:               append(rejectedLedger, rejectedStatement...),
		LedgerBeginningBalance: input.LedgerBeginningBalance,
		LedgerEndingBalance:    input.LedgerEndingBalance,
		BankBeginningBalance:   input.BankBeginningBalance,
		BankEndingBalance:      input.BankEndingBalance,
	})
}

// ReconcileAccount reconciles a statement against the stored ledger of an account for a period.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, input ReconcileAccountInput) (*domain.ReconciliationRun, error) {
	if uc.ledger == nil {
		return nil, domain.ErrLedgerSourceUnavailable
	}
	if err := validateHeader(input.AccountName, input.StatementDate); err != nil {
		return nil, err
	}
	if err := domain.ValidatePeriod(input.From, input.To); err != nil {
		return nil, err
	}
	if err := domain.ValidateRecordCount(domain.SourceStatement, len(input.StatementRecords)); err != nil {
		return nil, err
	}

	engine, policy, err := uc.resolve(input.Overrides)
	if err != nil {
		return nil, err
	}

	ledgerCtx, cancel := context.WithTimeout(ctx, DefaultLedgerTimeout)
	defer cancel()

	ledger, err := uc.ledger.ListByAccount(ledgerCtx, input.AccountName, input.From, input.To)
	if err != nil {
		uc.recorder.RecordFailure()
		return nil, fmt.Errorf("failed to load ledger for %s: %w", input.AccountName, err)
	}
	if err := domain.ValidateRecordCount(domain.SourceLedger, len(ledger)); err != nil {
		return nil, err
	}

	beginning, ending, err := uc.ledger.Balances(ledgerCtx, input.AccountName, input.From, input.To)
	if err != nil {
		uc.recorder.RecordFailure()
		return nil, fmt.Errorf("failed to load ledger balances for %s: %w", input.AccountName, err)
	}

	statement, rejected := record.NewNormalizer(policy, uc.now).Normalize(input.StatementRecords, domain.SourceStatement)

	return uc.run(ctx, engine, reconcile.Input{
		AccountName:            input.AccountName,
		StatementDate:          input.StatementDate,
		Ledger:                 ledger,
		Statement:              statement,
		Rejected:               rejected,
		LedgerBeginningBalance: beginning,
		LedgerEndingBalance:    ending,
		BankBeginningBalance:   input.BankBeginningBalance,
		BankEndingBalance:      input.BankEndingBalance,
	})
}

// GetRun returns a stored run.
func (uc *ReconciliationUseCase) GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
	if uc.reports == nil {
		return nil, domain.ErrRunNotFound
	}

	return uc.reports.Get(ctx, id)
}

// ListRuns returns the account's most recent stored runs, newest first.
func (uc *ReconciliationUseCase) ListRuns(ctx context.Context, account string, limit int) ([]*domain.ReconciliationRun, error) {
	if err := domain.ValidateAccountName(account); err != nil {
		return nil, err
	}
	if uc.reports == nil {
		return []*domain.ReconciliationRun{}, nil
	}

	return uc.reports.ListByAccount(ctx, account, domain.ClampRunLimit(limit))
}

func (uc *ReconciliationUseCase) run(ctx context.Context, engine *reconcile.Engine, in reconcile.Input) (*domain.ReconciliationRun, error) {
	start := uc.now()
	report := engine.Reconcile(in)
	uc.recorder.RecordRun(report, uc.now().Sub(start))

	run := &domain.ReconciliationRun{
		ID:        uc.idGen.Generate(),
		CreatedAt: start.UTC(),
		Report:    report,
	}

	if uc.reports != nil {
		if err := uc.reports.Save(ctx, run, uc.reportTTL); err != nil {
			return nil, fmt.Errorf("failed to store run %s: %w", run.ID, err)
		}
	}

	uc.logger.Info().
		Str("run_id", run.ID).
		Str("account", report.AccountName).
		Bool("reconciled", report.IsReconciled()).
		Int("rejected", len(report.Rejected)).
		Msg("reconciliation run stored")

	return run, nil
}

// resolve returns the engine and date policy for a run, applying overrides on top of the defaults.
func (uc *ReconciliationUseCase) resolve(o *MatchOverrides) (*reconcile.Engine, record.DatePolicy, error) {
	if o == nil {
		return uc.engine, uc.datePolicy, nil
	}

	policy := uc.datePolicy
	if o.DatePolicy != "" {
		p, err := record.ParseDatePolicy(o.DatePolicy)
		if err != nil {
			return nil, "", err
		}
		policy = p
	}

	if o.DateToleranceDays == nil && o.AmountTolerance == nil && o.DescriptionThreshold == nil && o.ConfidenceThreshold == nil {
		return uc.engine, policy, nil
	}

	cfg := uc.engine.Config()
	if o.DateToleranceDays != nil {
		cfg.DateToleranceDays = *o.DateToleranceDays
	}
	if o.AmountTolerance != nil {
		cfg.AmountTolerance = *o.AmountTolerance
	}
	if o.DescriptionThreshold != nil {
		cfg.DescriptionThreshold = *o.DescriptionThreshold
	}
	if o.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *o.ConfidenceThreshold
	}

	engine, err := reconcile.NewEngine(cfg, reconcile.WithLogger(uc.logger))
	if err != nil {
		return nil, "", err
	}

	return engine, policy, nil
}

func validateHeader(accountName, statementDate string) error {
	if err := domain.ValidateAccountName(accountName); err != nil {
		return err
	}
	return domain.ValidateStatementDate(statementDate)
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(*domain.ReconciliationReport, time.Duration) {}
func (nopRecorder) RecordFailure()                                        {}
