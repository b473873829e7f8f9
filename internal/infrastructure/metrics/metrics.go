package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/bankrecon/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Reconciliation metrics
	Runs                *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	Matches             *prometheus.CounterVec
	Unmatched           *prometheus.CounterVec
	Discrepancies       *prometheus.CounterVec
	RejectedRecords     *prometheus.CounterVec
	UnreconciledBalance prometheus.Histogram

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	GRPCRequests  *prometheus.CounterVec
	GRPCDuration  *prometheus.HistogramVec
	RateLimitHits prometheus.Counter

	// Store metrics
	DBErrors    *prometheus.CounterVec
	RedisErrors *prometheus.CounterVec
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_runs_total",
				Help: "Total reconciliation runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankrecon_run_duration_seconds",
			Help:    "Duration of reconciliation runs",
			Buckets: prometheus.DefBuckets,
		}),
		Matches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_matches_total",
				Help: "Total matched pairs by method",
			},
			[]string{"method"},
		),
		Unmatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_unmatched_total",
				Help: "Total unmatched transactions by side",
			},
			[]string{"source"},
		),
		Discrepancies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_discrepancies_total",
				Help: "Total discrepancies by type and severity",
			},
			[]string{"type", "severity"},
		),
		RejectedRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_rejected_records_total",
				Help: "Total input records excluded from matching",
			},
			[]string{"source"},
		),
		UnreconciledBalance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankrecon_unreconciled_difference",
			Help:    "Absolute ending balance difference of runs that did not reconcile",
			Buckets: []float64{0.01, 1, 10, 100, 1000, 10000, 100000},
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankrecon_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankrecon_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		GRPCRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_grpc_requests_total",
				Help: "Total gRPC requests",
			},
			[]string{"method", "status"},
		),
		GRPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankrecon_grpc_duration_seconds",
				Help:    "gRPC request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankrecon_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records the outcome of a finished reconciliation.
func (m *Metrics) RecordRun(report *domain.ReconciliationReport, duration time.Duration) {
	outcome := "unreconciled"
	if report.IsReconciled() {
		outcome = "reconciled"
	}

	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(duration.Seconds())

	for _, match := range report.Matches {
		m.Matches.WithLabelValues(string(match.Details.Method)).Inc()
	}
	m.Unmatched.WithLabelValues(string(domain.SourceLedger)).Add(float64(len(report.UnmatchedLedger)))
	m.Unmatched.WithLabelValues(string(domain.SourceStatement)).Add(float64(len(report.UnmatchedStatement)))

	for _, d := range report.Discrepancies {
		m.Discrepancies.WithLabelValues(string(d.Type), string(d.Severity)).Inc()
	}
	for _, r := range report.Rejected {
		m.RejectedRecords.WithLabelValues(string(r.Source)).Inc()
	}

	if !report.IsReconciled() {
		diff, _ := report.Difference().Abs().Float64()
		m.UnreconciledBalance.Observe(diff)
	}
}

// RecordFailure counts a run that did not produce a report.
func (m *Metrics) RecordFailure() {
	m.Runs.WithLabelValues("failed").Inc()
}
