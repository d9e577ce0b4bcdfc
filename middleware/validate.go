package middleware

import (
	"context"

	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
)

// validatable is the convention for self-validating message bodies.
type validatable interface {
	Validate() error
}

// Validation creates a validation-stage middleware. Message bodies
// implementing Validate() error are checked before the chain continues; a
// validation failure records the outcome on the context and short-circuits
// with a failure result. Bodies without the method pass through untouched.
//
// Example:
//
//	func (c CreateUser) Validate() error {
//	    if c.Email == "" {
//	        return errors.New("email is required")
//	    }
//	    return nil
//	}
//
//	b := bus.New(bus.WithMiddleware(middleware.Validation()))
func Validation() pipeline.Middleware {
	return pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			v, ok := msg.Body.(validatable)
			if !ok {
				return next(ctx)
			}

			if err := v.Validate(); err != nil {
				mctx.Validation = &message.StageOutcome{Messages: []string{err.Error()}}
				return pipeline.Fail("validation", err.Error()), nil
			}

			mctx.Validation = &message.StageOutcome{Passed: true}
			return next(ctx)
		},
		pipeline.AtStage(pipeline.StageValidation),
	)
}
