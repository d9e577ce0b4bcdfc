// Package bus is the composition root of the dispatch core. It wires the
// handler registry, the invoker registry, the activator, and the middleware
// pipeline into one Dispatch entry point.
//
// # Quick start
//
//	import (
//	    "github.com/dmitrymomot/mediator/core/bus"
//	    "github.com/dmitrymomot/mediator/core/message"
//	)
//
//	type GetUser struct {
//	    ID string
//	}
//
//	type GetUserHandler struct {
//	    Ctx *message.Context // injected per dispatch
//	    DB  *Store           // injected from the resolver
//	}
//
//	func (h *GetUserHandler) Handle(ctx context.Context, q GetUser) (*User, error) {
//	    return h.DB.FindUser(ctx, q.ID)
//	}
//
//	b := bus.New(bus.WithResolver(container))
//	bus.RegisterRequestHandler[GetUser, *User, *GetUserHandler](b)
//	b.Freeze() // optional: lock-free invoker reads from here on
//
//	result, err := b.Dispatch(ctx, message.New(message.KindQuery, GetUser{ID: "123"}))
//
// # Dispatch flow
//
// Dispatch rents (or creates) a per-dispatch message.Context, runs the
// middleware pipeline, and terminates in the canonical final delegate:
// cancellation check, registry lookup, handler activation, invocation,
// result conversion. Domain failures travel as pipeline.Result values;
// everything exceptional is a returned error. The bus never logs and
// swallows.
//
// # Registration
//
// The generic helpers (RegisterHandler, RegisterRequestHandler) register
// the registry entry and precompile a reflection-free invoker, which is the
// fastest resolution path. Register with prototypes when generics are not
// an option; those handlers fall back to the reflection-built invoker.
package bus
