package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist is a shared key-value store of invalidated token IDs with
// per-entry expiry. It is injected into the auth middleware rather than held
// as process-global state, so every instance observes the same revocations.
type TokenBlacklist interface {
	// Invalidate records the token ID until its natural expiry.
	Invalidate(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsInvalidated reports whether the token ID has been revoked.
	IsInvalidated(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenBlacklist implements TokenBlacklist on redis with TTL eviction.
type RedisTokenBlacklist struct {
	rdb *redis.Client
}

// NewRedisTokenBlacklist creates a redis-backed token blacklist.
func NewRedisTokenBlacklist(rdb *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{rdb: rdb}
}

func (b *RedisTokenBlacklist) Invalidate(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired on its own; nothing to record.
		return nil
	}
	return b.rdb.Set(ctx, "blacklist:"+tokenID, "1", ttl).Err()
}

func (b *RedisTokenBlacklist) IsInvalidated(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.rdb.Exists(ctx, "blacklist:"+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
