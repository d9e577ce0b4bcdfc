package bus

import "errors"

var (
	// ErrNoHandler is returned when a dispatched message has no registered
	// handler.
	ErrNoHandler = errors.New("bus: no handler registered for message")

	// ErrNilPrototype is returned when a registration is attempted with a
	// nil message or handler prototype.
	ErrNilPrototype = errors.New("bus: nil prototype")
)
