// Package invoker binds a resolved handler instance and a message into one
// executable call, independent of the handler's return-type shape.
//
// # Return shape normalization
//
// A handler exposes a method Handle(context.Context, T) with one of four
// signatures, all normalized into a single (any, error) channel:
//
//	Handle(ctx, T) error          -> nil
//	Handle(ctx, T) (R, error)     -> the value
//	Handle(ctx, T) (bool, error)  -> a shared boxed bool (no per-call boxing)
//	Handle(ctx, T) ([]any, error) -> the slice, unchanged, for fan-out
//
// # Resolution precedence
//
// Per handler type, checked once and cached: a precompiled invoker
// (Precompile, reflection-free), then a manually registered Func
// (RegisterFunc), then a closure built via reflection. Behavior is
// identical regardless of which path executes; the only observable
// difference is that the reflection path wraps a handler panic one level in
// ErrInvocationFailed.
//
// # Cache lifecycle
//
// The cache moves through three phases:
//
//	reg := invoker.NewRegistry()     // warmup: concurrent writes allowed
//	reg.Freeze()                     // idempotent; immutable lock-free snapshot
//	reg.IsFrozen()                   // true
//	reg.Invoke(ctx, lateHandler, m)  // miss: built on the fly, not persisted
//	reg.Clear()                      // back to warmup
//
// Registration (RegisterFunc, Precompile) is warmup-only and returns
// ErrCacheFrozen once the cache is frozen.
package invoker
