package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/bankrecon/internal/domain"
)

// MapDomainError converts domain errors to appropriate gRPC status codes
// This prevents internal error details from being exposed to clients
func MapDomainError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	// Not Found errors
	case errors.Is(err, domain.ErrRunNotFound):
		return status.Error(codes.NotFound, "reconciliation run not found")

	// Invalid Argument errors carry the validation message
	case errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidStatementDate),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidConfig):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, domain.ErrTooManyRecords):
		return status.Error(codes.ResourceExhausted, err.Error())

	case errors.Is(err, domain.ErrLedgerSourceUnavailable):
		return status.Error(codes.Unavailable, "ledger store is not configured")

	// Context errors (timeouts, cancellations)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "operation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "operation was canceled")

	// Default: Internal error (don't expose details)
	default:
		return status.Error(codes.Internal, "an internal error occurred")
	}
}
