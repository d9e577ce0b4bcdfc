package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
)

// Recovery creates a start-stage middleware that converts panics from the
// rest of the chain into failure results. The pipeline itself installs no
// recover; this middleware is the opt-in boundary for applications that
// must not crash on a misbehaving handler.
//
// Example:
//
//	b := bus.New(bus.WithMiddleware(
//	    middleware.Recovery(logger),
//	    middleware.Logging(logger),
//	))
func Recovery(logger *slog.Logger) pipeline.Middleware {
	return pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (result pipeline.Result, err error) {
			defer func() {
				if r := recover(); r != nil {
					if logger != nil {
						logger.ErrorContext(ctx, "dispatch panicked",
							slog.String("message", msg.Name()),
							slog.String("correlation_id", mctx.CorrelationID),
							slog.Any("panic", r))
					}
					result = pipeline.Fail("panic", fmt.Sprintf("%v", r))
					err = nil
				}
			}()
			return next(ctx)
		},
		pipeline.AtStage(pipeline.StageStart),
	)
}
