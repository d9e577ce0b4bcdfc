package invoker

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/mediator/core/message"
)

// snapshot is the immutable frozen view of the invoker cache. Readers hold
// no locks; a non-nil snapshot pointer means the cache is frozen.
type snapshot struct {
	precompiled map[reflect.Type]Func
	manual      map[reflect.Type]Func
	built       map[reflect.Type]Func
}

// Registry resolves an invoker Func per handler type and caches the result.
//
// Resolution precedence, checked once per handler type: a precompiled
// invoker registered via Precompile (reflection-free), then a manually
// registered Func, then a closure built via reflection and cached.
//
// The cache has three phases:
//
//   - Warmup: concurrently writable; registration allowed.
//   - Frozen: Freeze() swaps in an immutable snapshot read without locks.
//     Misses degrade gracefully: the invoker is built on the fly for that
//     call and not persisted. Registration is rejected while frozen.
//   - Reset: Clear() drops the reflection-built cache and returns to warmup.
//     Precompiled and manual registrations survive a reset; they are
//     registrations, not cache entries.
type Registry struct {
	precompiled sync.Map // reflect.Type -> Func
	manual      sync.Map // reflect.Type -> Func
	built       sync.Map // reflect.Type -> Func

	frozen   atomic.Pointer[snapshot]
	freezeMu sync.Mutex
}

// NewRegistry creates an invoker registry in warmup state.
func NewRegistry() *Registry {
	return &Registry{}
}

// IsFrozen reports whether the cache is in its frozen phase.
func (r *Registry) IsFrozen() bool {
	return r.frozen.Load() != nil
}

// RegisterFunc manually registers a typed invoker for a handler type.
// Manual registration is warmup-only; it fails with ErrCacheFrozen after
// Freeze. Under concurrent registration for the same type, last write wins.
func (r *Registry) RegisterFunc(handlerType reflect.Type, fn Func) error {
	if handlerType == nil || fn == nil {
		return fmt.Errorf("%w: handler type and func are required", ErrNilHandler)
	}
	if r.IsFrozen() {
		return fmt.Errorf("%w: cannot register invoker for %s", ErrCacheFrozen, message.TypeName(handlerType))
	}
	r.manual.Store(handlerType, fn)
	return nil
}

// Precompile registers a reflection-free invoker for the concrete handler
// type H. This is the fastest resolution path and takes precedence over
// both manual and reflection-built invokers.
//
// Example:
//
//	invoker.Precompile(reg, func(ctx context.Context, h *CreateUserHandler, msg message.Message) (any, error) {
//	    return nil, h.Handle(ctx, msg.Body.(CreateUser))
//	})
func Precompile[H any](r *Registry, fn func(ctx context.Context, handler H, msg message.Message) (any, error)) error {
	handlerType := reflect.TypeOf((*H)(nil)).Elem()
	if r.IsFrozen() {
		return fmt.Errorf("%w: cannot precompile invoker for %s", ErrCacheFrozen, message.TypeName(handlerType))
	}
	r.precompiled.Store(handlerType, Func(func(ctx context.Context, handler any, msg message.Message) (any, error) {
		h, ok := handler.(H)
		if !ok {
			return nil, fmt.Errorf("invoker: precompiled invoker expects %s, got %T", message.TypeName(handlerType), handler)
		}
		return fn(ctx, h, msg)
	}))
	return nil
}

// Invoke resolves the invoker for the handler's concrete type and executes
// it with the message.
func (r *Registry) Invoke(ctx context.Context, handler any, msg message.Message) (any, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if msg.Body == nil {
		return nil, ErrNilMessage
	}

	fn, err := r.resolve(reflect.TypeOf(handler))
	if err != nil {
		return nil, err
	}
	return fn(ctx, handler, msg)
}

// resolve returns the invoker for a handler type, honoring resolution
// precedence and the current cache phase.
func (r *Registry) resolve(handlerType reflect.Type) (Func, error) {
	if snap := r.frozen.Load(); snap != nil {
		if fn, ok := snap.precompiled[handlerType]; ok {
			return fn, nil
		}
		if fn, ok := snap.manual[handlerType]; ok {
			return fn, nil
		}
		if fn, ok := snap.built[handlerType]; ok {
			return fn, nil
		}
		// Miss on a frozen snapshot: build for this call only. The
		// snapshot stays immutable.
		return build(handlerType)
	}

	if fn, ok := r.precompiled.Load(handlerType); ok {
		return fn.(Func), nil
	}
	if fn, ok := r.manual.Load(handlerType); ok {
		return fn.(Func), nil
	}
	if fn, ok := r.built.Load(handlerType); ok {
		return fn.(Func), nil
	}

	fn, err := build(handlerType)
	if err != nil {
		return nil, err
	}
	// Concurrent warmup may build the same invoker twice; whichever write
	// lands first is the one everyone uses afterwards.
	actual, _ := r.built.LoadOrStore(handlerType, fn)
	return actual.(Func), nil
}

// Freeze transitions the cache to its frozen phase. It is idempotent and
// safe to call concurrently with readers: after the first call returns, the
// cache is an immutable snapshot of everything present at freeze time and
// reads take no locks.
func (r *Registry) Freeze() {
	r.freezeMu.Lock()
	defer r.freezeMu.Unlock()

	if r.frozen.Load() != nil {
		return
	}

	snap := &snapshot{
		precompiled: drain(&r.precompiled),
		manual:      drain(&r.manual),
		built:       drain(&r.built),
	}
	r.frozen.Store(snap)
}

// Clear returns the cache to warmup state: the frozen snapshot (if any) is
// discarded and the reflection-built cache is emptied. Precompiled and
// manual registrations are kept.
func (r *Registry) Clear() {
	r.freezeMu.Lock()
	defer r.freezeMu.Unlock()

	r.frozen.Store(nil)
	r.built.Range(func(key, _ any) bool {
		r.built.Delete(key)
		return true
	})
}

// drain copies a sync.Map of invokers into a plain map for the frozen
// snapshot.
func drain(m *sync.Map) map[reflect.Type]Func {
	out := make(map[reflect.Type]Func)
	m.Range(func(key, value any) bool {
		out[key.(reflect.Type)] = value.(Func)
		return true
	})
	return out
}
