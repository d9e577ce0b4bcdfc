package middleware

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
	"github.com/dmitrymomot/mediator/pkg/ratelimiter"
)

// RateLimitConfig configures the rate-limit middleware.
type RateLimitConfig struct {
	// Store holds the bucket state. Required.
	Store ratelimiter.Store

	// Limit describes the bucket. Required.
	Limit ratelimiter.Config

	// KeyFunc derives the limiter key from the dispatch. Defaults to
	// message name scoped by tenant.
	KeyFunc func(msg message.Message, mctx *message.Context) string

	// Skip suppresses limiting for specific messages.
	Skip func(msg message.Message, mctx *message.Context) bool
}

// RateLimit creates a rate-limiting-stage middleware. When the bucket for
// the dispatch's key is exhausted, the chain short-circuits with a failure
// result carrying the reset time; nothing downstream runs.
//
// Example:
//
//	b := bus.New(bus.WithMiddleware(middleware.RateLimit(middleware.RateLimitConfig{
//	    Store: ratelimiter.NewRedisStore(redisClient),
//	    Limit: ratelimiter.Config{Capacity: 100, RefillRate: 10, RefillInterval: time.Second},
//	})))
func RateLimit(cfg RateLimitConfig) pipeline.Middleware {
	if cfg.Store == nil {
		panic("ratelimit middleware: store is required")
	}
	if err := cfg.Limit.Validate(); err != nil {
		panic("ratelimit middleware: " + err.Error())
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(msg message.Message, mctx *message.Context) string {
			return mctx.TenantID + ":" + msg.Name()
		}
	}

	return pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			if cfg.Skip != nil && cfg.Skip(msg, mctx) {
				return next(ctx)
			}

			remaining, resetAt, err := cfg.Store.ConsumeTokens(ctx, cfg.KeyFunc(msg, mctx), 1, cfg.Limit)
			if err != nil {
				return pipeline.Result{}, err
			}
			if remaining < 0 {
				return pipeline.Fail("rate_limited",
					fmt.Sprintf("limit exceeded for %s, retry after %s", msg.Name(), resetAt.Format("15:04:05.000"))), nil
			}

			return next(ctx)
		},
		pipeline.AtStage(pipeline.StageRateLimiting),
	)
}
