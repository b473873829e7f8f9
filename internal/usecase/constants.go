package usecase

import "time"

const (
	// DefaultReportTTL is how long finished runs stay retrievable.
	DefaultReportTTL = 7 * 24 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPendingMarker is stored under a claimed key until the response is known.
	IdempotencyPendingMarker = "processing"

	// DefaultLedgerTimeout bounds ledger store reads for one run.
	DefaultLedgerTimeout = 30 * time.Second
)
