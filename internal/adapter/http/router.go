package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bankrecon/internal/adapter/http/handler"
	"github.com/iho/bankrecon/internal/adapter/http/middleware"
	"github.com/iho/bankrecon/internal/infrastructure/auth"
	"github.com/iho/bankrecon/internal/infrastructure/metrics"
	"github.com/iho/bankrecon/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional fields left nil
// disable the corresponding middleware.
type RouterConfig struct {
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	IdempotencyTTL        time.Duration
	MaxBodyBytes          int64
	RateLimiter           *middleware.RateLimiter
	JWTManager            *auth.JWTManager
	Metrics               *metrics.Metrics
	MetricsGatherer       prometheus.Gatherer
	Logger                zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		read := passthrough
		write := passthrough
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			read = middleware.RequireScope(auth.ScopeRead)
			write = middleware.RequireScope(auth.ScopeWrite)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).
				WithMaxBody(cfg.MaxBodyBytes)
			r.Use(idempotencyMiddleware.Wrap)
		}

		h := cfg.ReconciliationHandler

		r.Route("/reconciliations", func(r chi.Router) {
			r.With(write).Post("/", h.Reconcile)
			r.With(read).Get("/{id}", h.Get)
		})

		r.Route("/accounts/{account}/reconciliations", func(r chi.Router) {
			r.With(write).Post("/", h.ReconcileAccount)
			r.With(read).Get("/", h.ListByAccount)
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
