package main

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/adapter/importer"
	"github.com/iho/bankrecon/internal/adapter/render"
	"github.com/iho/bankrecon/internal/infrastructure/idgen"
	"github.com/iho/bankrecon/internal/reconcile"
	"github.com/iho/bankrecon/internal/usecase"
)

// reconcileFlags are the inputs shared by reconcile and submit.
type reconcileFlags struct {
	account       string
	statementDate string
	ledgerFile    string
	statementFile string

	ledgerBeginning string
	ledgerEnding    string
	bankBeginning   string
	bankEnding      string

	dateTolerance        int
	amountTolerance      string
	descriptionThreshold float64
	confidenceThreshold  float64
	datePolicy           string

	format string
}

func (f *reconcileFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.account, "account", "", "Account name")
	flags.StringVar(&f.statementDate, "statement-date", "", "Statement date (YYYY-MM-DD)")
	flags.StringVar(&f.ledgerFile, "ledger", "", "Ledger export (.json or .csv)")
	flags.StringVar(&f.statementFile, "statement", "", "Bank statement (.csv, .ofx, .qfx or .json)")

	flags.StringVar(&f.ledgerBeginning, "ledger-beginning", "0", "Ledger beginning balance")
	flags.StringVar(&f.ledgerEnding, "ledger-ending", "0", "Ledger ending balance")
	flags.StringVar(&f.bankBeginning, "bank-beginning", "0", "Bank beginning balance")
	flags.StringVar(&f.bankEnding, "bank-ending", "0", "Bank ending balance (defaults to the OFX ledger balance when present)")

	flags.IntVar(&f.dateTolerance, "date-tolerance", 0, "Override the date tolerance in days")
	flags.StringVar(&f.amountTolerance, "amount-tolerance", "", "Override the amount tolerance")
	flags.Float64Var(&f.descriptionThreshold, "description-threshold", 0, "Override the description similarity threshold")
	flags.Float64Var(&f.confidenceThreshold, "confidence-threshold", 0, "Override the confidence threshold")
	flags.StringVar(&f.datePolicy, "date-policy", "", "Handling of records without a date: reject or today")

	flags.StringVar(&f.format, "format", "json", "Output format: json or text")

	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("statement-date")
	_ = cmd.MarkFlagRequired("statement")
}

func (f *reconcileFlags) options(cmd *cobra.Command) (*dto.MatchOptions, error) {
	flags := cmd.Flags()
	opts := &dto.MatchOptions{DatePolicy: f.datePolicy}
	changed := f.datePolicy != ""

	if flags.Changed("date-tolerance") {
		opts.DateToleranceDays = &f.dateTolerance
		changed = true
	}
	if flags.Changed("amount-tolerance") {
		d, err := decimal.NewFromString(f.amountTolerance)
		if err != nil {
			return nil, fmt.Errorf("invalid --amount-tolerance %q: %w", f.amountTolerance, err)
		}
		opts.AmountTolerance = &d
		changed = true
	}
	if flags.Changed("description-threshold") {
		opts.DescriptionThreshold = &f.descriptionThreshold
		changed = true
	}
	if flags.Changed("confidence-threshold") {
		opts.ConfidenceThreshold = &f.confidenceThreshold
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return opts, nil
}

// request reads both files and assembles the API request body.
func (f *reconcileFlags) request(cmd *cobra.Command) (*dto.ReconcileRequest, error) {
	req := &dto.ReconcileRequest{
		AccountName:   f.account,
		StatementDate: f.statementDate,
	}

	balances := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"ledger-beginning", f.ledgerBeginning, &req.LedgerBeginningBalance},
		{"ledger-ending", f.ledgerEnding, &req.LedgerEndingBalance},
		{"bank-beginning", f.bankBeginning, &req.BankBeginningBalance},
		{"bank-ending", f.bankEnding, &req.BankEndingBalance},
	}
	for _, b := range balances {
		d, err := decimal.NewFromString(b.value)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", b.name, b.value, err)
		}
		*b.dst = d
	}

	stmt, err := importer.ReadFile(f.statementFile)
	if err != nil {
		return nil, err
	}
	req.StatementTransactions = stmt.Records
	if stmt.EndingBalance != nil && !cmd.Flags().Changed("bank-ending") {
		req.BankEndingBalance = *stmt.EndingBalance
	}

	if f.ledgerFile != "" {
		ledger, err := importer.ReadFile(f.ledgerFile)
		if err != nil {
			return nil, err
		}
		req.LedgerTransactions = ledger.Records
	}

	opts, err := f.options(cmd)
	if err != nil {
		return nil, err
	}
	req.Options = opts

	return req, nil
}

func reconcileCmd() *cobra.Command {
	var f reconcileFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a ledger export against a bank statement locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.ledgerFile == "" {
				return fmt.Errorf("--ledger is required for a local reconciliation")
			}

			req, err := f.request(cmd)
			if err != nil {
				return err
			}

			run, err := reconcileLocally(cmd.Context(), req)
			if err != nil {
				return err
			}

			return writeRun(cmd.OutOrStdout(), f.format, run)
		},
	}

	f.register(cmd)
	return cmd
}

// reconcileLocally runs the engine in-process with default matching
// parameters; nothing is stored.
func reconcileLocally(ctx context.Context, req *dto.ReconcileRequest) (*render.Run, error) {
	engine, err := reconcile.NewEngine(reconcile.DefaultConfig())
	if err != nil {
		return nil, err
	}

	uc := usecase.NewReconciliationUseCase(engine, nil, idgen.NewULIDGenerator())

	if ctx == nil {
		ctx = context.Background()
	}
	run, err := uc.Reconcile(ctx, req.ToUseCaseInput())
	if err != nil {
		return nil, err
	}

	return render.FromRun(run), nil
}

func writeRun(w io.Writer, format string, run *render.Run) error {
	switch format {
	case "json":
		return printJSON(w, run)
	case "text":
		printSummary(w, run)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}
}

func printSummary(w io.Writer, run *render.Run) {
	s := run.Summary

	status := "NOT RECONCILED"
	if s.IsReconciled {
		status = "RECONCILED"
	}

	fmt.Fprintf(w, "Run %s: %s %s - %s\n", run.ID, s.AccountName, s.StatementDate, status)
	fmt.Fprintf(w, "  Ledger balance: %s -> %s\n", s.LedgerBeginningBalance.StringFixed(2), s.LedgerEndingBalance.StringFixed(2))
	fmt.Fprintf(w, "  Bank balance:   %s -> %s\n", s.BankBeginningBalance.StringFixed(2), s.BankEndingBalance.StringFixed(2))
	fmt.Fprintf(w, "  Difference:     %s\n", s.Difference.StringFixed(2))
	fmt.Fprintf(w, "  Matched:              %d (%s)\n", s.MatchedCount, s.MatchedAmount.StringFixed(2))
	fmt.Fprintf(w, "  Unmatched ledger:     %d (%s)\n", s.UnmatchedLedgerCount, s.UnmatchedLedgerAmount.StringFixed(2))
	fmt.Fprintf(w, "  Unmatched statement:  %d (%s)\n", s.UnmatchedStatementCount, s.UnmatchedStatementAmount.StringFixed(2))
	if s.RejectedCount > 0 {
		fmt.Fprintf(w, "  Rejected records:     %d\n", s.RejectedCount)
	}

	for _, d := range run.Discrepancies {
		fmt.Fprintf(w, "  [%s] %s: %s\n", d.Severity, d.Type, truncate(d.Message, 100))
	}
}
