package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/metrics"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "iuranweb:credential:"

// RedisStore is the durable Store implementation. Keys carry an optional TTL
// so an abandoned credential eventually ages out together with the session
// cookie it belongs to.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed Store. A ttl of zero means keys never
// expire.
func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		metrics.TokenStoreOpsTotal.WithLabelValues("get", "miss").Inc()
		return "", false, nil
	}
	if err != nil {
		metrics.TokenStoreOpsTotal.WithLabelValues("get", "error").Inc()
		return "", false, fmt.Errorf("failed to read credential key %q: %w", key, err)
	}

	metrics.TokenStoreOpsTotal.WithLabelValues("get", "ok").Inc()
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		metrics.TokenStoreOpsTotal.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to write credential key %q: %w", key, err)
	}

	metrics.TokenStoreOpsTotal.WithLabelValues("set", "ok").Inc()
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		metrics.TokenStoreOpsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("failed to remove credential key %q: %w", key, err)
	}

	metrics.TokenStoreOpsTotal.WithLabelValues("remove", "ok").Inc()
	return nil
}
