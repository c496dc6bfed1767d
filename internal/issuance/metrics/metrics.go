// Package metrics provides Prometheus metrics for credential issuance.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Issuance outcomes.
const (
	OutcomeIssued             = "issued"
	OutcomeUnauthorized       = "unauthorized"
	OutcomeNotInitialized     = "not_initialized"
	OutcomeVerificationFailed = "verification_failed"
	OutcomeIssuanceFailed     = "issuance_failed"
	OutcomeInvalid            = "invalid"
	OutcomeConflict           = "conflict"
)

// Metrics contains the issuance counters and latency histograms.
type Metrics struct {
	IssuanceTotal          *prometheus.CounterVec
	VerifierLatencySeconds *prometheus.HistogramVec
	InitializationsTotal   prometheus.Counter
}

// New registers the issuance metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		IssuanceTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zkid_issuance_total",
			Help: "Total number of mint_credential calls by outcome",
		}, []string{"outcome"}),
		VerifierLatencySeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zkid_verifier_latency_seconds",
			Help:    "Latency of delegated proof verification by verifier reference and verdict",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"verifier", "verdict"}),
		InitializationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkid_issuance_initializations_total",
			Help: "Total number of successful orchestrator initializations",
		}),
	}
}

func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.IssuanceTotal.WithLabelValues(outcome).Inc()
}

// ObserveVerification records a verifier call. verdict is accepted, rejected or aborted.
func (m *Metrics) ObserveVerification(verifierRef, verdict string, d time.Duration) {
	if m == nil {
		return
	}
	m.VerifierLatencySeconds.WithLabelValues(verifierRef, verdict).Observe(d.Seconds())
}

func (m *Metrics) IncrementInitialized() {
	if m == nil {
		return
	}
	m.InitializationsTotal.Inc()
}
