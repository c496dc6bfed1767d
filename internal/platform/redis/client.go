// Package redis connects the verdict cache to Redis and exports connection
// pool statistics to Prometheus.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"zkid/internal/platform/config"
)

// Client embeds *redis.Client so the cache can issue commands directly.
type Client struct {
	*redis.Client
}

// New parses cfg.URL and pings the server. An empty URL disables the
// verdict cache and yields (nil, nil).
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: rdb}, nil
}

// Health is registered as the "redis" readiness check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Collector reads PoolStats at scrape time.
func (c *Client) Collector() prometheus.Collector {
	return &poolCollector{stats: c.PoolStats}
}

var (
	poolHitsDesc = prometheus.NewDesc("zkid_redis_pool_hits_total",
		"Connections found idle in the pool.", nil, nil)
	poolMissesDesc = prometheus.NewDesc("zkid_redis_pool_misses_total",
		"Connections that had to be dialed.", nil, nil)
	poolTimeoutsDesc = prometheus.NewDesc("zkid_redis_pool_timeouts_total",
		"Waits for a free connection that timed out.", nil, nil)
	poolStaleDesc = prometheus.NewDesc("zkid_redis_pool_stale_conns_total",
		"Stale connections removed from the pool.", nil, nil)
	poolTotalDesc = prometheus.NewDesc("zkid_redis_pool_total_conns",
		"Open connections.", nil, nil)
	poolIdleDesc = prometheus.NewDesc("zkid_redis_pool_idle_conns",
		"Idle connections.", nil, nil)
)

type poolCollector struct {
	stats func() *redis.PoolStats
}

func (pc *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolHitsDesc
	ch <- poolMissesDesc
	ch <- poolTimeoutsDesc
	ch <- poolStaleDesc
	ch <- poolTotalDesc
	ch <- poolIdleDesc
}

func (pc *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := pc.stats()
	ch <- prometheus.MustNewConstMetric(poolHitsDesc, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(poolMissesDesc, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(poolTimeoutsDesc, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(poolStaleDesc, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns))
}
