package middleware_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/bankrecon/internal/adapter/grpc/middleware"
	"github.com/iho/bankrecon/internal/infrastructure/metrics"
)

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	interceptor := middleware.MetricsInterceptor(m)
	info := &grpc.UnaryServerInfo{FullMethod: reconcileMethod}

	interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})

	if got := testutil.ToFloat64(m.GRPCRequests.WithLabelValues(reconcileMethod, "OK")); got != 1 {
		t.Fatalf("expected 1 OK call, got %v", got)
	}
	if got := testutil.ToFloat64(m.GRPCRequests.WithLabelValues(reconcileMethod, "NotFound")); got != 1 {
		t.Fatalf("expected 1 NotFound call, got %v", got)
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := middleware.LoggingInterceptor(zerolog.New(&buf))

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: getRunMethod}, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected handler error to pass through, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, getRunMethod) || !strings.Contains(out, `"code":"NotFound"`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := middleware.RecoveryInterceptor(zerolog.Nop())

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: reconcileMethod}, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}
