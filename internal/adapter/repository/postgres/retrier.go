package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes worth another attempt.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrConnectionFailure    = "08006"
	pgErrAdminShutdown        = "57P01"
)

// Retrier runs ledger store queries with exponential backoff on transient
// failures.
type Retrier struct {
	attempts        int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
	onError         func(op string)
}

// NewRetrier creates a Retrier allowing three retries within ten seconds.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		attempts:        4,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
		onError:         func(string) {},
	}
}

// OnError registers fn to be called with the operation name for every failed attempt.
func (r *Retrier) OnError(fn func(op string)) *Retrier {
	r.onError = fn
	return r
}

// Retry runs fn until it succeeds, fails permanently, or the attempts run out.
// op names the query in logs and error counts.
func (r *Retrier) Retry(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	attempt := 0

	return backoff.Retry(func() error {
		attempt++

		err := fn()
		if err == nil {
			return nil
		}
		r.onError(op)

		if !isRetryableError(err) || attempt >= r.attempts {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Msg("transient ledger store error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrConnectionFailure, pgErrAdminShutdown:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
