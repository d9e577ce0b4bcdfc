package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis, for limits shared across
// processes. It uses a fixed window of one refill interval: the counter is
// incremented per consume and expires at the window boundary.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces the limiter keys in Redis.
// Defaults to "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Store over an existing Redis client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// ConsumeTokens implements Store. The window length is the refill interval
// and the window budget is the bucket capacity.
func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	if err := config.Validate(); err != nil {
		return 0, time.Time{}, err
	}
	if tokens <= 0 {
		return 0, time.Time{}, ErrInvalidTokenCount
	}

	redisKey := rs.keyPrefix + key

	pipe := rs.client.TxPipeline()
	incr := pipe.IncrBy(ctx, redisKey, int64(tokens))
	// NX keeps the original window boundary for subsequent consumes.
	pipe.ExpireNX(ctx, redisKey, config.RefillInterval)
	ttl := pipe.PTTL(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	remaining := config.Capacity - int(incr.Val())

	resetAt := time.Now().Add(config.RefillInterval)
	if d := ttl.Val(); d > 0 {
		resetAt = time.Now().Add(d)
	}

	return remaining, resetAt, nil
}

// Reset implements Store.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
