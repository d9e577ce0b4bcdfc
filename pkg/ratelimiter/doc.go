// Package ratelimiter provides the bucket-state stores behind the
// rate-limit middleware.
//
// Two stores implement the same interface: MemoryStore runs the token
// bucket algorithm in process and suits single-instance deployments and
// tests; RedisStore counts in a fixed window per refill interval and holds
// the limit across processes.
//
//	store := ratelimiter.NewMemoryStore()
//	cfg := ratelimiter.Config{Capacity: 100, RefillRate: 10, RefillInterval: time.Second}
//
//	remaining, resetAt, err := store.ConsumeTokens(ctx, "tenant:42", 1, cfg)
//	if remaining < 0 {
//	    // over the limit until resetAt
//	}
package ratelimiter
