package service

import (
	"log/slog"

	issuancemetrics "zkid/internal/issuance/metrics"
	"zkid/pkg/platform/audit"
	"zkid/pkg/platform/tracer"
	"zkid/pkg/platform/tx"
)

// serviceConfig holds optional dependencies for the orchestrator.
type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher audit.Emitter
	metrics        *issuancemetrics.Metrics
	tracer         tracer.Tracer
	tx             tx.Runner
}

// Option configures the orchestrator.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Emitter) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *issuancemetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

// WithTx sets the transaction boundary shared with the credential store.
// Defaults to an in-memory lock.
func WithTx(runner tx.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = runner
	}
}
