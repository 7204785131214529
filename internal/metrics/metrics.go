package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Business Metrics
	RotationSwapsTotal      prometheus.Counter
	InvariantFailuresTotal  prometheus.Counter
	AllocationRunsTotal     prometheus.Counter
	BatchCommitsTotal       prometheus.Counter
	BatchRejectionsTotal    prometheus.Counter
	DismissalFlagsTotal     prometheus.Counter
	ArchivedRecordsTotal    prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pollen_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pollen_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pollen_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		RotationSwapsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_rotation_swaps_total",
			Help: "Total promotion swaps committed",
		}),
		InvariantFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_roster_invariant_failures_total",
			Help: "Total roster invariant violations detected at swap commit",
		}),
		AllocationRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_allocation_runs_total",
			Help: "Total successful allocation calculations",
		}),
		BatchCommitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_compensation_batch_commits_total",
			Help: "Total compensation batches persisted",
		}),
		BatchRejectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_compensation_batch_rejections_total",
			Help: "Total compensation batches rejected by validation",
		}),
		DismissalFlagsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_dismissal_flags_total",
			Help: "Total trial members flagged for dismissal",
		}),
		ArchivedRecordsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pollen_archived_records_total",
			Help: "Total compensation records archived",
		}),
	}
}
