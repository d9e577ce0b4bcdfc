// Package pipeline routes a message through an ordered chain of
// cross-cutting middleware and then a caller-supplied final delegate.
//
// # Ordering
//
// Middleware declare an optional Stage. The chain sorts by ascending stage
// rank with registration order as the stable tie-breaker; unstaged
// middleware run after every staged one, among themselves in registration
// order. The canonical stages, lowest to highest: Start, RateLimiting,
// Instrumentation, PreProcessing, Validation, Authorization, Routing,
// Processing, PostProcessing, Error.
//
// # Execution
//
// Each middleware receives a next continuation. Calling next runs the rest
// of the chain; returning without calling next short-circuits it, skipping
// every remaining middleware and the final delegate:
//
//	mw := pipeline.NewFunc(func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
//	    if !authorized(msg, mctx) {
//	        return pipeline.Fail("unauthorized", "caller lacks permission"), nil
//	    }
//	    return next(ctx)
//	}, pipeline.AtStage(pipeline.StageAuthorization))
//
// Errors propagate unmodified to the Execute caller: the pipeline installs
// no recover and no implicit error conversion. The Hooked base offers
// opt-in Before and OnError hooks for middleware that want short-circuit or
// error-to-result behavior without writing the control flow themselves.
//
// # Chain cache
//
// The sorted, kind-filtered chain is cached per concrete message type.
// ShouldProcess predicates run per dispatch, not at cache-build time.
// ClearCache swaps the cache wholesale and is safe to call at any moment.
package pipeline
