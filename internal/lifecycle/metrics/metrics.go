package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the lifecycle processor.
type Metrics struct {
	RequestsProcessed  *prometheus.CounterVec
	ProcessingFailures *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	HistoryWarnings    prometheus.Counter
	PendingFetched     *prometheus.CounterVec
	BulkRejections     *prometheus.CounterVec
}

// New registers the lifecycle collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credrelay_lifecycle_requests_processed_total",
			Help: "Lifecycle requests processed, by type and decision.",
		}, []string{"type", "decision"}),
		ProcessingFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credrelay_lifecycle_processing_failures_total",
			Help: "Lifecycle requests that failed before reaching a decision.",
		}, []string{"type"}),
		ProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credrelay_lifecycle_processing_duration_seconds",
			Help:    "Time spent processing one lifecycle request.",
			Buckets: prometheus.DefBuckets,
		}),
		HistoryWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credrelay_lifecycle_history_warnings_total",
			Help: "Issuer-side history updates that failed after a successful decision.",
		}),
		PendingFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credrelay_lifecycle_pending_fetched_total",
			Help: "Pending requests fetched from the boundary, by type.",
		}, []string{"type"}),
		BulkRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credrelay_lifecycle_bulk_rejections_total",
			Help: "Bulk rejection outcomes, by result.",
		}, []string{"result"}),
	}
}
