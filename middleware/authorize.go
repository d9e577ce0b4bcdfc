package middleware

import (
	"context"

	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
)

// Policy decides whether the dispatch may proceed. Returning an error
// denies it; the error text becomes the failure detail.
type Policy func(ctx context.Context, msg message.Message, mctx *message.Context) error

// Authorization creates an authorization-stage middleware that applies the
// policy before the chain continues. A denial records the outcome on the
// context and short-circuits with a failure result; the remaining
// middleware and the handler never run.
//
// Example:
//
//	b := bus.New(bus.WithMiddleware(
//	    middleware.Authorization(func(ctx context.Context, msg message.Message, mctx *message.Context) error {
//	        if mctx.TenantID == "" {
//	            return errors.New("missing tenant")
//	        }
//	        return nil
//	    }),
//	))
func Authorization(policy Policy) pipeline.Middleware {
	if policy == nil {
		panic("authorization middleware: policy is required")
	}

	return pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			if err := policy(ctx, msg, mctx); err != nil {
				mctx.Authorization = &message.StageOutcome{Messages: []string{err.Error()}}
				return pipeline.Fail("unauthorized", err.Error()), nil
			}

			mctx.Authorization = &message.StageOutcome{Passed: true}
			return next(ctx)
		},
		pipeline.AtStage(pipeline.StageAuthorization),
	)
}
