package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/infrastructure/postgres/generated"
)

// LedgerTransactionRepository implements usecase.LedgerSource over the
// ledger_transactions table.
type LedgerTransactionRepository struct {
	queries *generated.Queries
	txm     *TxManager
	retrier *Retrier
}

// NewLedgerTransactionRepository creates a new LedgerTransactionRepository.
func NewLedgerTransactionRepository(pool *pgxpool.Pool, retrier *Retrier) *LedgerTransactionRepository {
	return newLedgerTransactionRepository(pool, retrier)
}

func newLedgerTransactionRepository(pool pgxPool, retrier *Retrier) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{
		queries: generated.New(pool),
		txm:     newTxManager(pool),
		retrier: retrier,
	}
}

// ListByAccount returns the account's transactions dated within [from, to].
// A zero from or to leaves that end of the period open.
func (r *LedgerTransactionRepository) ListByAccount(ctx context.Context, account string, from, to time.Time) ([]domain.Transaction, error) {
	var rows []generated.LedgerTransaction

	err := r.retrier.Retry(ctx, "list", func() error {
		var err error
		rows, err = r.queries.ListLedgerTransactions(ctx, generated.ListLedgerTransactionsParams{
			Account:  account,
			FromDate: dateParam(from),
			ToDate:   dateParam(to),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}

	txns := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}

	return txns, nil
}

// Balances returns the sum of the account's transactions dated before from
// and dated up to to.
func (r *LedgerTransactionRepository) Balances(ctx context.Context, account string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var row generated.GetLedgerBalancesRow

	err := r.retrier.Retry(ctx, "balances", func() error {
		var err error
		row, err = r.queries.GetLedgerBalances(ctx, generated.GetLedgerBalancesParams{
			Account:  account,
			FromDate: dateParam(from),
			ToDate:   dateParam(to),
		})
		return err
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to load ledger balances: %w", err)
	}

	return numericToDecimal(row.BeginningBalance), numericToDecimal(row.EndingBalance), nil
}

// Import upserts txns into the account's ledger in one transaction, keyed by
// transaction id. It returns the number of rows written.
func (r *LedgerTransactionRepository) Import(ctx context.Context, account string, txns []domain.Transaction) (int, error) {
	if err := domain.ValidateAccountName(account); err != nil {
		return 0, err
	}
	if err := domain.ValidateRecordCount(domain.SourceLedger, len(txns)); err != nil {
		return 0, err
	}

	account = strings.TrimSpace(account)
	err := r.retrier.Retry(ctx, "import", func() error {
		return r.txm.WithTx(ctx, func(q *generated.Queries) error {
			for _, t := range txns {
				if err := q.UpsertLedgerTransaction(ctx, generated.UpsertLedgerTransactionParams{
					Account:     account,
					ExternalID:  t.ID,
					TxnDate:     dateParam(t.Date),
					Amount:      decimalToNumeric(t.Amount),
					Description: t.Description,
					Reference:   t.Reference,
					CheckNumber: t.CheckNumber,
				}); err != nil {
					return fmt.Errorf("transaction %s: %w", t.ID, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import ledger transactions: %w", err)
	}

	return len(txns), nil
}

// Count returns how many transactions are stored for the account.
func (r *LedgerTransactionRepository) Count(ctx context.Context, account string) (int64, error) {
	return r.queries.CountLedgerTransactions(ctx, account)
}

func rowToTransaction(row generated.LedgerTransaction) domain.Transaction {
	return domain.Transaction{
		ID:          row.ExternalID,
		Date:        domain.CalendarDate(row.TxnDate.Time),
		Amount:      numericToDecimal(row.Amount),
		Description: row.Description,
		Reference:   row.Reference,
		CheckNumber: row.CheckNumber,
		Source:      domain.SourceLedger,
	}
}
