package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/adapter/record"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
)

// MatchOptions overrides matching parameters for a single request.
type MatchOptions struct {
	DateToleranceDays    *int             `json:"date_tolerance_days,omitempty"`
	AmountTolerance      *decimal.Decimal `json:"amount_tolerance,omitempty"`
	DescriptionThreshold *float64         `json:"description_threshold,omitempty"`
	ConfidenceThreshold  *float64         `json:"confidence_threshold,omitempty"`
	DatePolicy           string           `json:"date_policy,omitempty"`
}

func (o *MatchOptions) toOverrides() *usecase.MatchOverrides {
	if o == nil {
		return nil
	}
	return &usecase.MatchOverrides{
		DateToleranceDays:    o.DateToleranceDays,
		AmountTolerance:      o.AmountTolerance,
		DescriptionThreshold: o.DescriptionThreshold,
		ConfidenceThreshold:  o.ConfidenceThreshold,
		DatePolicy:           o.DatePolicy,
	}
}

// ReconcileRequest carries both sides of a reconciliation.
type ReconcileRequest struct {
	AccountName            string          `json:"account_name"`
	StatementDate          string          `json:"statement_date"`
	LedgerTransactions     []record.Record `json:"ledger_transactions"`
	StatementTransactions  []record.Record `json:"statement_transactions"`
	LedgerBeginningBalance decimal.Decimal `json:"ledger_beginning_balance"`
	LedgerEndingBalance    decimal.Decimal `json:"ledger_ending_balance"`
	BankBeginningBalance   decimal.Decimal `json:"bank_beginning_balance"`
	BankEndingBalance      decimal.Decimal `json:"bank_ending_balance"`
	Options                *MatchOptions   `json:"options,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReconcileRequest) ToUseCaseInput() usecase.ReconcileInput {
	return usecase.ReconcileInput{
		AccountName:            r.AccountName,
		StatementDate:          r.StatementDate,
		LedgerRecords:          r.LedgerTransactions,
		StatementRecords:       r.StatementTransactions,
		LedgerBeginningBalance: r.LedgerBeginningBalance,
		LedgerEndingBalance:    r.LedgerEndingBalance,
		BankBeginningBalance:   r.BankBeginningBalance,
		BankEndingBalance:      r.BankEndingBalance,
		Overrides:              r.Options.toOverrides(),
	}
}

// ReconcileAccountRequest carries the statement side; the ledger side is
// read from the ledger store for the period [from, to].
type ReconcileAccountRequest struct {
	StatementDate         string          `json:"statement_date"`
	From                  string          `json:"from"`
	To                    string          `json:"to"`
	StatementTransactions []record.Record `json:"statement_transactions"`
	BankBeginningBalance  decimal.Decimal `json:"bank_beginning_balance"`
	BankEndingBalance     decimal.Decimal `json:"bank_ending_balance"`
	Options               *MatchOptions   `json:"options,omitempty"`
}

// ToUseCaseInput converts to use case input for the named account.
func (r *ReconcileAccountRequest) ToUseCaseInput(account string) (usecase.ReconcileAccountInput, error) {
	from, err := parsePeriodDate("from", r.From)
	if err != nil {
		return usecase.ReconcileAccountInput{}, err
	}
	to, err := parsePeriodDate("to", r.To)
	if err != nil {
		return usecase.ReconcileAccountInput{}, err
	}

	return usecase.ReconcileAccountInput{
		AccountName:          account,
		StatementDate:        r.StatementDate,
		From:                 from,
		To:                   to,
		StatementRecords:     r.StatementTransactions,
		BankBeginningBalance: r.BankBeginningBalance,
		BankEndingBalance:    r.BankEndingBalance,
		Overrides:            r.Options.toOverrides(),
	}, nil
}

func parsePeriodDate(field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not YYYY-MM-DD", domain.ErrInvalidPeriod, field, value)
	}
	return t, nil
}
