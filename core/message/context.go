package message

import (
	"maps"
	"reflect"

	"github.com/google/uuid"
)

// ServiceResolver is the dependency-resolution boundary the dispatch core
// consumes. Implementations are typically adapters over an application's
// dependency-injection container.
type ServiceResolver interface {
	// Resolve returns an instance of the requested type if the resolver
	// can provide one.
	Resolve(t reflect.Type) (any, bool)

	// Known reports whether the type is explicitly registered with the
	// resolver. It is a capability probe and must not construct anything.
	Known(t reflect.Type) bool
}

// StageOutcome records the verdict of a validation or authorization stage
// on the active context.
type StageOutcome struct {
	Passed   bool
	Messages []string
}

// RouteDecision records where a routing middleware decided to send the
// message.
type RouteDecision struct {
	Destination string
}

// Context is the mutable per-dispatch bag of cross-cutting state. It is
// created (or rented from a Pool) once per dispatch and must never be shared
// between concurrent dispatches.
type Context struct {
	MessageID     string
	CorrelationID string
	CausationID   string
	TenantID      string
	SessionID     string
	WorkflowID    string
	DeliveryCount int

	// Validation and Authorization hold the sub-results recorded by the
	// corresponding middleware stages; Routing holds the routing decision.
	Validation    *StageOutcome
	Authorization *StageOutcome
	Routing       *RouteDecision

	// RequestServices is the dependency resolver active for this dispatch.
	RequestServices ServiceResolver

	items map[string]any
}

// NewContext creates an empty dispatch context with a fresh correlation ID.
func NewContext() *Context {
	return &Context{
		CorrelationID: uuid.New().String(),
		items:         make(map[string]any),
	}
}

// Set stores an arbitrary item on the context under the given key.
func (c *Context) Set(key string, value any) {
	if c.items == nil {
		c.items = make(map[string]any)
	}
	c.items[key] = value
}

// Get returns the item stored under key, if any.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.items[key]
	return v, ok
}

// Delete removes the item stored under key.
func (c *Context) Delete(key string) {
	delete(c.items, key)
}

// CreateChildContext clones the context for fan-out dispatches. The child
// shares the correlation chain: its causation ID is the parent's message ID,
// its item store is an independent copy, and its delivery count starts over.
func (c *Context) CreateChildContext() *Context {
	child := &Context{
		CorrelationID:   c.CorrelationID,
		CausationID:     c.MessageID,
		TenantID:        c.TenantID,
		SessionID:       c.SessionID,
		WorkflowID:      c.WorkflowID,
		RequestServices: c.RequestServices,
		items:           maps.Clone(c.items),
	}
	if child.items == nil {
		child.items = make(map[string]any)
	}
	return child
}

// reset clears all per-dispatch state so a pooled context can be reused.
func (c *Context) reset() {
	*c = Context{items: c.items}
	clear(c.items)
}
