package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records that an operation keyed by (scope, key) has been
// applied, so repeated webhook deliveries can be acknowledged without
// re-running side effects. Entries expire after the configured TTL; the
// database guards remain the source of truth once an entry has lapsed.
type IdempotencyStore interface {
	// MarkOnce records the key and reports whether this call was the
	// first to do so.
	MarkOnce(ctx context.Context, scope, key string) (bool, error)

	// Seen reports whether the key has been recorded.
	Seen(ctx context.Context, scope, key string) (bool, error)
}

// RedisIdempotencyStore implements IdempotencyStore on redis SETNX.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisIdempotencyStore creates a redis-backed idempotency store.
func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) MarkOnce(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idemp:"+scope+":"+key, "1", s.ttl).Result()
}

func (s *RedisIdempotencyStore) Seen(ctx context.Context, scope, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, "idemp:"+scope+":"+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
