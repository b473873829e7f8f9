package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/adapter/record"
	"github.com/iho/bankrecon/internal/reconcile"
)

// Config holds all application configuration.
type Config struct {
	// Database (leave DATABASE_URL empty to run without a ledger store)
	DatabaseURL      string        `env:"DATABASE_URL"       envDefault:""`
	DatabaseMaxConns int           `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns int           `env:"DATABASE_MIN_CONNS" envDefault:"1"`
	DatabaseTimeout  time.Duration `env:"DATABASE_TIMEOUT"   envDefault:"30s"`
	MigrationsPath   string        `env:"MIGRATIONS_PATH"    envDefault:"migrations"`

	// Redis
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"60s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes        int64         `env:"HTTP_MAX_BODY_BYTES"   envDefault:"33554432"`

	// gRPC Server
	GRPCPort string `env:"GRPC_PORT" envDefault:"9090"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Idempotency and stored runs
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	ReportTTL      time.Duration `env:"REPORT_TTL"      envDefault:"168h"`

	// Rate limiting (requests per second per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Authentication (optional - leave empty to disable)
	JWTSecret     string        `env:"JWT_SECRET"     envDefault:""`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	AuthEnabled   bool          `env:"AUTH_ENABLED"   envDefault:"false"`

	// Matching defaults
	Match MatchConfig
}

// MatchConfig holds the default matching parameters used when a request does not override them.
type MatchConfig struct {
	DateToleranceDays    int     `env:"MATCH_DATE_TOLERANCE_DAYS"   envDefault:"3"`
	AmountTolerance      string  `env:"MATCH_AMOUNT_TOLERANCE"      envDefault:"0.01"`
	DescriptionThreshold float64 `env:"MATCH_DESCRIPTION_THRESHOLD" envDefault:"0.6"`
	ConfidenceThreshold  float64 `env:"MATCH_CONFIDENCE_THRESHOLD"  envDefault:"0.75"`
	Workers              int     `env:"MATCH_WORKERS"               envDefault:"1"`
	DatePolicy           string  `env:"MATCH_DATE_POLICY"           envDefault:"reject"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := cfg.Match.Engine(); err != nil {
		return nil, err
	}
	if _, err := cfg.Match.Policy(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Engine converts the matching defaults to a validated engine configuration.
func (m MatchConfig) Engine() (reconcile.Config, error) {
	tolerance, err := decimal.NewFromString(m.AmountTolerance)
	if err != nil {
		return reconcile.Config{}, fmt.Errorf("invalid MATCH_AMOUNT_TOLERANCE %q: %w", m.AmountTolerance, err)
	}

	cfg := reconcile.Config{
		DateToleranceDays:    m.DateToleranceDays,
		AmountTolerance:      tolerance,
		DescriptionThreshold: m.DescriptionThreshold,
		ConfidenceThreshold:  m.ConfidenceThreshold,
		Workers:              m.Workers,
	}
	if err := cfg.Validate(); err != nil {
		return reconcile.Config{}, err
	}

	return cfg, nil
}

// Policy returns the configured handling for records without a usable date.
func (m MatchConfig) Policy() (record.DatePolicy, error) {
	return record.ParseDatePolicy(m.DatePolicy)
}
