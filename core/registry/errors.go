package registry

import "errors"

var (
	// ErrNilType is returned when a registration is attempted with a nil
	// message or handler type.
	ErrNilType = errors.New("registry: nil type")
)
