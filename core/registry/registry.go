package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dmitrymomot/mediator/core/message"
)

// Entry maps a message type to the handler type responsible for it.
type Entry struct {
	MessageType     reflect.Type
	HandlerType     reflect.Type
	ExpectsResponse bool
}

// Registry is the static message-type to handler-type mapping shared by the
// whole process. It is safe for concurrent registration and lookup.
//
// Registering the same message type twice replaces the previous entry:
// last write wins. Generic instantiations are distinct reflect.Type keys;
// there is no fallback from one instantiation to another.
//
// Example:
//
//	reg := registry.New()
//	reg.Register(reflect.TypeOf(CreateUser{}), reflect.TypeOf(&CreateUserHandler{}), true)
//	entry, ok := reg.TryGet(reflect.TypeOf(CreateUser{}))
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]Entry
}

// New creates an empty handler registry.
func New() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]Entry),
	}
}

// Register maps a message type to a handler type. A later call for the same
// message type replaces the earlier entry.
func (r *Registry) Register(messageType, handlerType reflect.Type, expectsResponse bool) error {
	if messageType == nil {
		return fmt.Errorf("%w: message type", ErrNilType)
	}
	if handlerType == nil {
		return fmt.Errorf("%w: handler type for %s", ErrNilType, message.TypeName(messageType))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[messageType] = Entry{
		MessageType:     messageType,
		HandlerType:     handlerType,
		ExpectsResponse: expectsResponse,
	}
	return nil
}

// TryGet returns the entry registered for the message type, if any.
func (r *Registry) TryGet(messageType reflect.Type) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[messageType]
	return entry, ok
}

// All returns a point-in-time snapshot of every registered entry. The
// snapshot is independent: registrations after All returns do not affect it.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		snapshot = append(snapshot, entry)
	}
	return snapshot
}

// Len returns the number of registered message types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
