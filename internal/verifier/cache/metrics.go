package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts verdict cache traffic.
type Metrics struct {
	HitsTotal             prometheus.Counter
	MissesTotal           prometheus.Counter
	LookupDurationSeconds prometheus.Histogram
}

// NewMetrics registers the verdict cache metrics. Call once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		HitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkid_verdict_cache_hits_total",
			Help: "Total number of verification verdicts served from cache",
		}),
		MissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkid_verdict_cache_misses_total",
			Help: "Total number of verdict cache misses",
		}),
		LookupDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "zkid_verdict_cache_lookup_duration_seconds",
			Help:    "Duration of verdict cache lookups",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
		}),
	}
}

func (m *Metrics) recordHit(d time.Duration) {
	if m == nil {
		return
	}
	m.HitsTotal.Inc()
	m.LookupDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) recordMiss(d time.Duration) {
	if m == nil {
		return
	}
	m.MissesTotal.Inc()
	m.LookupDurationSeconds.Observe(d.Seconds())
}
