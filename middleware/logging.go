package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
)

// LoggingConfig configures the dispatch logging middleware.
type LoggingConfig struct {
	// Logger receives the log records. Required.
	Logger *slog.Logger

	// LogLevel for successful dispatches (default: Info). Failures and
	// errors always log at Error.
	LogLevel slog.Level

	// SlowThreshold logs a warning for dispatches taking longer. Zero
	// disables the check.
	SlowThreshold time.Duration

	// Skip suppresses logging for specific messages.
	Skip func(msg message.Message, mctx *message.Context) bool
}

// Logging creates an instrumentation-stage middleware that logs every
// dispatch with its message name, kind, correlation ID, duration, and
// outcome.
//
// Example:
//
//	b := bus.New(bus.WithMiddleware(middleware.Logging(logger)))
func Logging(logger *slog.Logger) pipeline.Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: logger})
}

// LoggingWithConfig creates the logging middleware with full configuration.
// Panics if no logger is provided.
func LoggingWithConfig(cfg LoggingConfig) pipeline.Middleware {
	if cfg.Logger == nil {
		panic("logging middleware: logger is required")
	}

	return pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			if cfg.Skip != nil && cfg.Skip(msg, mctx) {
				return next(ctx)
			}

			start := time.Now()
			attrs := []any{
				slog.String("message", msg.Name()),
				slog.String("kind", msg.Kind.String()),
				slog.String("correlation_id", mctx.CorrelationID),
			}

			result, err := next(ctx)
			duration := time.Since(start)
			attrs = append(attrs, slog.Duration("duration", duration))

			switch {
			case err != nil:
				cfg.Logger.ErrorContext(ctx, "dispatch failed",
					append(attrs, slog.String("error", err.Error()))...)
			case !result.OK():
				cfg.Logger.ErrorContext(ctx, "dispatch rejected",
					append(attrs, slog.String("problem", result.Problem.String()))...)
			case cfg.SlowThreshold > 0 && duration > cfg.SlowThreshold:
				cfg.Logger.WarnContext(ctx, "slow dispatch", attrs...)
			default:
				cfg.Logger.LogAttrs(ctx, cfg.LogLevel, "dispatch completed", toAttrs(attrs)...)
			}

			return result, err
		},
		pipeline.AtStage(pipeline.StageInstrumentation),
	)
}

func toAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args))
	for _, a := range args {
		if attr, ok := a.(slog.Attr); ok {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}
