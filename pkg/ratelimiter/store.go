package ratelimiter

import (
	"context"
	"time"
)

// Config describes a token bucket: its capacity and how it refills.
type Config struct {
	// Capacity is the maximum number of tokens the bucket holds.
	Capacity int

	// RefillRate is how many tokens are added per refill interval.
	RefillRate int

	// RefillInterval is how often tokens are added.
	RefillInterval time.Duration
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Store is the bucket-state backend behind the rate-limit middleware.
// Implementations must be safe for concurrent use.
type Store interface {
	// ConsumeTokens takes tokens from the bucket identified by key,
	// creating it at full capacity on first use. A negative remaining
	// count means the caller is over the limit.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset removes the bucket state for the key.
	Reset(ctx context.Context, key string) error
}
