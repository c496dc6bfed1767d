package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zkid/internal/platform/config"
	"zkid/internal/platform/database"
	kafkaclient "zkid/internal/platform/kafka"
	redisclient "zkid/internal/platform/redis"
	"zkid/migrations"
	"zkid/pkg/platform/tx"
)

// infrastructure holds the optional backing services. A nil field means the
// corresponding variable was not set and the in-process fallback is used.
type infrastructure struct {
	db     *database.Pool
	redis  *redisclient.Client
	kafka  *kafkaclient.Producer
	logger *slog.Logger
}

func newInfrastructure(ctx context.Context, cfg config.Server, log *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{logger: log}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		infra.db = db
		prometheus.MustRegister(db.Collector())
		if err := migrations.Apply(ctx, db.DB()); err != nil {
			infra.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("postgres persistence enabled")
	} else {
		log.Info("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		infra.Close()
		return nil, err
	}
	if rc != nil {
		infra.redis = rc
		prometheus.MustRegister(rc.Collector())
		log.Info("verdict cache enabled", "ttl", cfg.Redis.VerdictTTL.String())
	}

	if cfg.Kafka.Brokers != "" {
		p, err := kafkaclient.New(kafkaclient.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            "all",
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.kafka = p
		log.Info("audit stream enabled", "topic", cfg.Kafka.AuditTopic)
	}

	return infra, nil
}

// txRunner returns the transaction boundary shared by every store. Services
// that nest calls must share one runner so inner calls join the outer one.
func (i *infrastructure) txRunner() tx.Runner {
	if i.db != nil {
		return tx.NewPostgres(i.db.DB())
	}
	return tx.NewInMemory()
}

func (i *infrastructure) Close() {
	if i.kafka != nil {
		if err := i.kafka.Close(); err != nil {
			i.logger.Warn("close kafka producer", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			i.logger.Warn("close redis", "error", err)
		}
	}
	if err := i.db.Close(); err != nil {
		i.logger.Warn("close database", "error", err)
	}
}
