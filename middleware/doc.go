// Package middleware provides stock dispatch middleware for the canonical
// pipeline stages.
//
//   - Recovery — Start stage; converts downstream panics into failure results
//   - RateLimit — RateLimiting stage; token bucket over a pluggable store
//   - Logging — Instrumentation stage; structured slog records per dispatch
//   - Validation — Validation stage; self-validating message bodies
//   - Authorization — Authorization stage; caller-supplied policy
//
// All of them are ordinary pipeline.Middleware values: register them with
// bus.WithMiddleware in any order, the pipeline sorts by stage.
//
//	b := bus.New(bus.WithMiddleware(
//	    middleware.Logging(logger),
//	    middleware.Recovery(logger),
//	    middleware.Validation(),
//	))
package middleware
