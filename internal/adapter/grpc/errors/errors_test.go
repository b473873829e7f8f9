package errors_test

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcerrors "github.com/iho/bankrecon/internal/adapter/grpc/errors"
	"github.com/iho/bankrecon/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    codes.Code
		wantMsg string
	}{
		{"nil error", nil, codes.OK, ""},
		{"run not found", domain.ErrRunNotFound, codes.NotFound, "reconciliation run not found"},
		{"wrapped run not found", fmt.Errorf("load: %w", domain.ErrRunNotFound), codes.NotFound, "reconciliation run not found"},
		{"invalid account", fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidAccountName), codes.InvalidArgument, "invalid account name: name cannot be empty"},
		{"invalid statement date", domain.ErrInvalidStatementDate, codes.InvalidArgument, "invalid statement date"},
		{"invalid period", domain.ErrInvalidPeriod, codes.InvalidArgument, "invalid period"},
		{"invalid config", domain.ErrInvalidConfig, codes.InvalidArgument, "invalid reconciliation config"},
		{"too many records", domain.ErrTooManyRecords, codes.ResourceExhausted, "too many records"},
		{"no ledger source", domain.ErrLedgerSourceUnavailable, codes.Unavailable, "ledger store is not configured"},
		{"deadline exceeded", context.DeadlineExceeded, codes.DeadlineExceeded, "operation timed out"},
		{"canceled", context.Canceled, codes.Canceled, "operation was canceled"},
		{"unknown error", stdErrors.New("boom"), codes.Internal, "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := grpcerrors.MapDomainError(tt.err)

			if tt.err == nil && got != nil {
				t.Fatalf("expected nil, got %v", got)
			}

			if tt.err == nil {
				return
			}

			st, ok := status.FromError(got)
			if !ok {
				t.Fatalf("expected gRPC status error, got %v", got)
			}

			if st.Code() != tt.want {
				t.Fatalf("expected code %s, got %s", tt.want, st.Code())
			}

			if st.Message() != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, st.Message())
			}
		})
	}
}
