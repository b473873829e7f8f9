package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/bankrecon/internal/infrastructure/postgres/generated"
)

// pgxPool is the subset of *pgxpool.Pool the repositories use.
type pgxPool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager runs query batches inside a single database transaction.
type TxManager struct {
	pool pgxPool
}

func newTxManager(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// WithTx calls fn with queries bound to a new transaction, committing on
// success and rolling back when fn fails.
func (m *TxManager) WithTx(ctx context.Context, fn func(q *generated.Queries) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(generated.New(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
