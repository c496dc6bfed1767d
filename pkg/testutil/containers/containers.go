//go:build integration

// Package containers starts the Postgres, Redis and Redpanda dependencies for
// integration tests. Each container is started at most once per test binary
// and reaped by the testcontainers sidecar when the process exits.
package containers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const dockerHint = "is docker running?"

// shared memoizes one container, including a failed start.
type shared[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (s *shared[T]) get(t *testing.T, start func(context.Context) (T, error)) T {
	t.Helper()
	s.once.Do(func() {
		s.val, s.err = start(context.Background())
	})
	require.NoError(t, s.err, dockerHint)
	return s.val
}

type Manager struct {
	postgres shared[*PostgresContainer]
	redis    shared[*RedisContainer]
	kafka    shared[*KafkaContainer]
}

var manager = &Manager{}

func GetManager() *Manager { return manager }

// GetPostgres returns a migrated database. Suites truncate what they touch.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	return m.postgres.get(t, startPostgres)
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	return m.redis.get(t, startRedis)
}

func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	return m.kafka.get(t, startKafka)
}
