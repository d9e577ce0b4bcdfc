// Package message defines the value types that flow through the dispatch
// core: the immutable Message envelope, the mutable per-dispatch Context,
// and the Pool that recycles contexts between dispatches.
//
// # Messages
//
// A Message wraps an arbitrary payload with a stable identity and a Kind
// used by middleware for applicability filtering:
//
//	type CreateUser struct {
//	    Email string
//	}
//
//	msg := message.New(message.KindAction, CreateUser{Email: "user@example.com"})
//
// Messages are immutable: the core passes them by value and never writes to
// them. The payload's concrete type (msg.Type()) is the routing key used by
// the handler registry.
//
// # Context
//
// Context carries cross-cutting per-dispatch state: correlation/causation
// IDs, tenant and session identity, middleware sub-results, a string-keyed
// item store, and the dependency resolver active for the dispatch
// (RequestServices). A Context belongs to exactly one in-flight dispatch;
// use CreateChildContext to fan out:
//
//	child := parent.CreateChildContext()
//	// child.CorrelationID == parent.CorrelationID
//	// child.CausationID   == parent.MessageID
//
// # Pooling
//
// Pool recycles contexts through sync.Pool so steady-state dispatch does
// not allocate a context per call:
//
//	pool := message.NewPool()
//	ctx := pool.Rent()
//	defer pool.ReturnToPool(ctx)
package message
