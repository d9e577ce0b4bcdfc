package message

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Kind classifies a message for middleware filtering. Kinds are bit flags,
// so a middleware can declare applicability to several kinds at once.
type Kind uint8

const (
	// KindAction is an imperative message with exactly one handler.
	KindAction Kind = 1 << iota
	// KindEvent is a notification that something already happened.
	KindEvent
	// KindQuery is a read-only request expecting a response.
	KindQuery
	// KindDocument carries a payload routed by content rather than intent.
	KindDocument
)

// KindAll matches every message kind.
const KindAll = KindAction | KindEvent | KindQuery | KindDocument

// String returns a human-readable name for logging.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindEvent:
		return "event"
	case KindQuery:
		return "query"
	case KindDocument:
		return "document"
	case KindAll:
		return "all"
	default:
		return "mixed"
	}
}

// Intersects reports whether the two kind masks share at least one kind.
func (k Kind) Intersects(other Kind) bool {
	return k&other != 0
}

// Message is an immutable value routed through the dispatch pipeline.
// The core never mutates it; ownership stays with the caller.
//
// Example:
//
//	type CreateUser struct {
//	    Email string
//	}
//
//	msg := message.New(message.KindAction, CreateUser{Email: "user@example.com"})
//	// msg.ID is a UUID, msg.Type() is reflect.TypeOf(CreateUser{})
type Message struct {
	ID   string
	Kind Kind
	Body any
}

// New creates a Message with an auto-generated ID.
func New(kind Kind, body any) Message {
	return Message{
		ID:   uuid.New().String(),
		Kind: kind,
		Body: body,
	}
}

// Type returns the concrete type of the message body. This is the key used
// by the handler registry and the pipeline's chain cache.
func (m Message) Type() reflect.Type {
	return reflect.TypeOf(m.Body)
}

// Name returns the short type name of the message body for logging and
// metrics. Results are cached to avoid repeated reflection overhead.
func (m Message) Name() string {
	return TypeName(reflect.TypeOf(m.Body))
}

// typeNameCache caches reflection results for message name lookups.
var typeNameCache sync.Map

// TypeName derives a short name from a reflect.Type, dereferencing pointers.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if name, ok := typeNameCache.Load(t); ok {
		return name.(string)
	}

	original := t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}

	typeNameCache.Store(original, name)
	return name
}
