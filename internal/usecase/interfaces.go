package usecase

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// LedgerSource provides the book side of a reconciliation from a ledger store.
type LedgerSource interface {
	// ListByAccount returns the account's transactions dated within [from, to], ordered by date.
	ListByAccount(ctx context.Context, account string, from, to time.Time) ([]domain.Transaction, error)
	// Balances returns the account balance before from and as of to.
	Balances(ctx context.Context, account string, from, to time.Time) (beginning, ending decimal.Decimal, err error)
}

// ReportStore keeps finished runs for later retrieval.
type ReportStore interface {
	Save(ctx context.Context, run *domain.ReconciliationRun, ttl time.Duration) error
	// Get returns domain.ErrRunNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.ReconciliationRun, error)
	// ListByAccount returns up to limit of the account's most recent runs, newest first.
	ListByAccount(ctx context.Context, account string, limit int) ([]*domain.ReconciliationRun, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Recorder observes finished runs.
type Recorder interface {
	RecordRun(report *domain.ReconciliationReport, duration time.Duration)
	RecordFailure()
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}
