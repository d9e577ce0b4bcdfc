package invoker

import "errors"

var (
	// ErrNilHandler is returned when Invoke is called without a handler instance.
	ErrNilHandler = errors.New("invoker: nil handler")

	// ErrNilMessage is returned when Invoke is called with an empty message body.
	ErrNilMessage = errors.New("invoker: nil message body")

	// ErrNoHandleMethod is returned when a handler type has no usable Handle
	// method. The error names the offending type.
	ErrNoHandleMethod = errors.New("invoker: no usable Handle method")

	// ErrCacheFrozen is returned when a registration is attempted after the
	// invoker cache has been frozen. Registration is warmup-only.
	ErrCacheFrozen = errors.New("invoker: cache is frozen")

	// ErrInvocationFailed wraps a panic raised inside a reflection-built
	// invoker. Precompiled and manually registered invokers never wrap;
	// unwrap one level on the reflection path to reach the original cause.
	ErrInvocationFailed = errors.New("invoker: invocation failed")
)
