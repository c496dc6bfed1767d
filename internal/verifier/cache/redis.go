package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"zkid/internal/verifier"
)

const redisVerdictKeyPrefix = "zkid:verdict:"

type verdict struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// RedisStore keeps verdicts in Redis with TTL eviction.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed verdict store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load performs a Redis GET. A missing key is a miss, not an error.
func (s *RedisStore) Load(ctx context.Context, key Key) (verifier.Outcome, bool, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return verifier.Outcome{}, false, nil
		}
		return verifier.Outcome{}, false, fmt.Errorf("find verdict: %w", err)
	}

	var v verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return verifier.Outcome{}, false, fmt.Errorf("decode verdict: %w", err)
	}
	return verifier.Outcome{Accepted: v.Accepted, ProofID: key.ProofID, Reason: v.Reason}, true, nil
}

// Save writes the verdict, overwriting any existing entry.
func (s *RedisStore) Save(ctx context.Context, key Key, out verifier.Outcome) error {
	payload, err := json.Marshal(verdict{Accepted: out.Accepted, Reason: out.Reason})
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

// redisKey is zkid:verdict:<verifier ref>:<proof id hex>. The proof id has a
// fixed length, so a ref containing ':' cannot collide with another key.
func redisKey(key Key) string {
	return redisVerdictKeyPrefix + key.String()
}
