package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the claim protocol.
type Metrics struct {
	SyncRuns       *prometheus.CounterVec
	SyncDuration   prometheus.Histogram
	ItemsClaimed   prometheus.Counter
	ItemsStored    prometheus.Counter
	ItemsSkipped   prometheus.Counter
	ItemsConfirmed prometheus.Counter
}

// New registers and returns claim protocol metrics collectors.
func New() *Metrics {
	return &Metrics{
		SyncRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credrelay_sync_runs_total",
			Help: "Total number of synchronization runs, labeled by outcome",
		}, []string{"outcome"}),
		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credrelay_sync_duration_seconds",
			Help:    "Duration of synchronization runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ItemsClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credrelay_claim_items_claimed_total",
			Help: "Total number of claim items pulled from the server queue",
		}),
		ItemsStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credrelay_claim_items_stored_total",
			Help: "Total number of claim items decrypted and stored locally",
		}),
		ItemsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credrelay_claim_items_skipped_total",
			Help: "Total number of claim items skipped as undecryptable or malformed",
		}),
		ItemsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credrelay_claim_items_confirmed_total",
			Help: "Total number of claim items confirmed back to the server",
		}),
	}
}
