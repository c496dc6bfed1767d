// Package metrics provides Prometheus metrics for the credential registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CredentialsMinted prometheus.Counter
	TotalSupply       prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CredentialsMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "zkid_credentials_minted_total",
			Help: "Total number of credentials minted by this process",
		}),
		TotalSupply: factory.NewGauge(prometheus.GaugeOpts{
			Name: "zkid_credential_total_supply",
			Help: "Credential supply observed after the latest mint",
		}),
	}
}

func (m *Metrics) IncrementMinted(supply uint64) {
	if m == nil {
		return
	}
	m.CredentialsMinted.Inc()
	m.TotalSupply.Set(float64(supply))
}
