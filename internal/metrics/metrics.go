package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the attendance service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Domain Metrics
	ScansTotal            prometheus.CounterVec
	PenaltiesAppliedTotal prometheus.CounterVec
	SweepRunsTotal        prometheus.Counter
	SweepEventsProcessed  prometheus.Counter
	SweepNoShowsPenalized prometheus.Counter
	SweepDuration         prometheus.Histogram
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventmanager_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventmanager_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eventmanager_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Domain Metrics
		ScansTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventmanager_scans_total",
				Help: "Total scan attempts by outcome code",
			},
			[]string{"outcome"},
		),
		PenaltiesAppliedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventmanager_penalties_applied_total",
				Help: "Total penalty mutations by type",
			},
			[]string{"type"},
		),
		SweepRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "eventmanager_sweep_runs_total",
				Help: "Total no-show sweep ticks executed",
			},
		),
		SweepEventsProcessed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "eventmanager_sweep_events_processed_total",
				Help: "Total ended events processed by the no-show sweep",
			},
		),
		SweepNoShowsPenalized: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "eventmanager_sweep_no_shows_penalized_total",
				Help: "Total no-show penalties applied by the sweep",
			},
		),
		SweepDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "eventmanager_sweep_duration_seconds",
				Help:    "No-show sweep tick execution time in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
	}
}
