package activator

import (
	"reflect"
	"sync"
)

// Container is a minimal map-based ServiceResolver for composition roots
// and tests. Real applications typically adapt their own dependency
// container to message.ServiceResolver instead.
//
// Example:
//
//	c := activator.NewContainer()
//	activator.Provide(c, &CreateUserHandler{DB: db})
//	activator.ProvideFactory(c, func() *AuditLog { return NewAuditLog() })
type Container struct {
	mu        sync.RWMutex
	factories map[reflect.Type]func() any
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		factories: make(map[reflect.Type]func() any),
	}
}

// Provide registers a singleton instance under its concrete type.
func Provide[T any](c *Container, instance T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[reflect.TypeOf(instance)] = func() any { return instance }
}

// ProvideFactory registers a factory producing a fresh instance per
// resolution.
func ProvideFactory[T any](c *Container, factory func() T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[reflect.TypeOf((*T)(nil)).Elem()] = func() any { return factory() }
}

// Resolve implements message.ServiceResolver.
func (c *Container) Resolve(t reflect.Type) (any, bool) {
	c.mu.RLock()
	factory, ok := c.factories[t]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Known implements message.ServiceResolver. It is a pure capability probe
// and constructs nothing.
func (c *Container) Known(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.factories[t]
	return ok
}
