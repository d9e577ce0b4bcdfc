package activator

import "errors"

var (
	// ErrNilHandlerType is returned when activation is attempted without a
	// handler type.
	ErrNilHandlerType = errors.New("activator: nil handler type")

	// ErrNilContext is returned when activation is attempted without a
	// message context.
	ErrNilContext = errors.New("activator: nil message context")

	// ErrNilResolver is returned when activation is attempted without a
	// service resolver.
	ErrNilResolver = errors.New("activator: nil service resolver")

	// ErrNotRegistered is returned by ActivateRegisteredHandler when the
	// handler type is not explicitly registered with the resolver.
	ErrNotRegistered = errors.New("activator: handler type not registered")

	// ErrNotConstructible is returned when a handler type cannot be built
	// by the constructor-injection fallback.
	ErrNotConstructible = errors.New("activator: handler type not constructible")
)
