package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcMiddleware "github.com/iho/bankrecon/internal/adapter/grpc/middleware"
	grpcServer "github.com/iho/bankrecon/internal/adapter/grpc/server"
	httpAdapter "github.com/iho/bankrecon/internal/adapter/http"
	"github.com/iho/bankrecon/internal/adapter/http/handler"
	httpMiddleware "github.com/iho/bankrecon/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/bankrecon/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankrecon/internal/adapter/repository/redis"
	"github.com/iho/bankrecon/internal/infrastructure/auth"
	"github.com/iho/bankrecon/internal/infrastructure/config"
	"github.com/iho/bankrecon/internal/infrastructure/idgen"
	"github.com/iho/bankrecon/internal/infrastructure/logger"
	"github.com/iho/bankrecon/internal/infrastructure/metrics"
	"github.com/iho/bankrecon/internal/infrastructure/postgres"
	"github.com/iho/bankrecon/internal/infrastructure/redis"
	"github.com/iho/bankrecon/internal/reconcile"
	"github.com/iho/bankrecon/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLog

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Fatal().Err(err).Msg("server failed")
	}

	appLog.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLog zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry)

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	appLog.Info().Msg("connected to redis")

	// Connect to PostgreSQL when a ledger store is configured
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pool.Close()
		appLog.Info().Msg("connected to postgres")
	} else {
		appLog.Warn().Msg("DATABASE_URL not set, account reconciliations are disabled")
	}

	uc, err := buildUseCase(cfg, pool, redisClient, m, appLog)
	if err != nil {
		return err
	}

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			return errors.New("AUTH_ENABLED requires JWT_SECRET")
		}
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	rateLimiter := httpMiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
		OnLimit(m.RateLimitHits.Inc)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ReconciliationHandler: handler.NewReconciliationHandler(uc, cfg.MaxBodyBytes, appLog),
		HealthHandler:         handler.NewHealthHandler(readinessChecks(pool, redisClient, m)...),
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		MaxBodyBytes:          cfg.MaxBodyBytes,
		RateLimiter:           rateLimiter,
		JWTManager:            jwtManager,
		Metrics:               m,
		MetricsGatherer:       registry,
		Logger:                appLog,
	})

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	grpcSrv := newGRPCServer(uc, idempotencyStore, cfg.IdempotencyTTL, jwtManager, m, appLog)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port %s: %w", cfg.GRPCPort, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLog.Info().Str("port", cfg.HTTPPort).Msg("starting http server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		appLog.Info().Str("port", cfg.GRPCPort).Msg("starting grpc server")
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimiter.CleanupLimiters(rateLimiterIdle)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		appLog.Info().Msg("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		grpcSrv.GracefulStop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// buildUseCase wires the reconciliation use case. pool may be nil when no
// ledger store is configured.
func buildUseCase(cfg *config.Config, pool *pgxpool.Pool, redisClient goredis.UniversalClient, m *metrics.Metrics, appLog zerolog.Logger) (*usecase.ReconciliationUseCase, error) {
	engineCfg, err := cfg.Match.Engine()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Match.Policy()
	if err != nil {
		return nil, err
	}

	engine, err := reconcile.NewEngine(engineCfg, reconcile.WithLogger(appLog))
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithRecorder(m),
		usecase.WithReportTTL(cfg.ReportTTL),
		usecase.WithDatePolicy(policy),
		usecase.WithLogger(appLog),
	}
	if pool != nil {
		retrier := postgresRepo.NewRetrier(appLog).OnError(func(op string) {
			m.DBErrors.WithLabelValues(op).Inc()
		})
		ledger := postgresRepo.NewLedgerTransactionRepository(pool, retrier)
		opts = append(opts, usecase.WithLedgerSource(ledger))
	}

	return usecase.NewReconciliationUseCase(
		engine,
		redisRepo.NewReportStore(redisClient),
		idgen.NewULIDGenerator(),
		opts...,
	), nil
}

// grpcMethodScopes maps each RPC to the token scope it requires.
func grpcMethodScopes() map[string]string {
	return map[string]string{
		grpcServer.ReconcileMethod:        auth.ScopeWrite,
		grpcServer.ReconcileAccountMethod: auth.ScopeWrite,
		grpcServer.GetRunMethod:           auth.ScopeRead,
		grpcServer.ListRunsMethod:         auth.ScopeRead,
	}
}

func newGRPCServer(
	uc grpcServer.ReconciliationUseCase,
	store grpcMiddleware.IdempotencyStore,
	idempotencyTTL time.Duration,
	jwtManager *auth.JWTManager,
	m *metrics.Metrics,
	appLog zerolog.Logger,
) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		grpcMiddleware.RecoveryInterceptor(appLog),
		grpcMiddleware.LoggingInterceptor(appLog),
		grpcMiddleware.MetricsInterceptor(m),
	}
	if jwtManager != nil {
		interceptors = append(interceptors, grpcMiddleware.AuthInterceptor(jwtManager, grpcMethodScopes()))
	}
	interceptors = append(interceptors, grpcMiddleware.IdempotencyInterceptor(
		store,
		idempotencyTTL,
		grpcServer.GetRunMethod,
		grpcServer.ListRunsMethod,
	))

	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(interceptors...)))
	grpcServer.RegisterReconciliationServiceServer(srv, grpcServer.NewReconciliationServer(uc))

	return srv
}

// readinessChecks probes redis and, when configured, postgres. Failures are
// counted per dependency.
func readinessChecks(pool *pgxpool.Pool, redisClient goredis.UniversalClient, m *metrics.Metrics) []handler.HealthCheck {
	checks := []handler.HealthCheck{{
		Name: "redis",
		Check: func(ctx context.Context) error {
			if err := redis.Ping(ctx, redisClient); err != nil {
				m.RedisErrors.WithLabelValues("ping").Inc()
				return err
			}
			return nil
		},
	}}

	if pool != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "postgres",
			Check: func(ctx context.Context) error {
				if err := pool.Ping(ctx); err != nil {
					m.DBErrors.WithLabelValues("ping").Inc()
					return err
				}
				return nil
			},
		})
	}

	return checks
}
