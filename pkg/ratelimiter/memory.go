package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// bucket is one token bucket's state.
type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time // used by Cleanup to drop stale buckets
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Use RedisStore when the limit must hold across processes.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
	}
}

// ConsumeTokens implements Store using the token bucket algorithm: whole
// refill intervals elapsed since the last refill add RefillRate tokens
// each, capped at capacity, then the requested amount is consumed.
func (ms *MemoryStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	if err := config.Validate(); err != nil {
		return 0, time.Time{}, err
	}
	if tokens <= 0 {
		return 0, time.Time{}, ErrInvalidTokenCount
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	b, exists := ms.buckets[key]
	if !exists {
		b = &bucket{tokens: config.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill)
	// Cap intervals so a long-idle bucket cannot overflow the math.
	maxIntervals := int64(config.Capacity/config.RefillRate + 1)
	intervals := int(min(int64(elapsed/config.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*config.RefillRate, config.Capacity)
		b.lastRefill = now
	}

	b.tokens -= tokens
	b.lastAccess = now

	return b.tokens, b.lastRefill.Add(config.RefillInterval), nil
}

// Reset implements Store.
func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// Cleanup drops buckets idle longer than maxIdle and returns how many were
// removed. Call it periodically from the application's own scheduler.
func (ms *MemoryStore) Cleanup(maxIdle time.Duration) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, b := range ms.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(ms.buckets, key)
			removed++
		}
	}
	return removed
}
