package pipeline

import "errors"

var (
	// ErrNilMessage is returned when Execute is called with an empty message body.
	ErrNilMessage = errors.New("pipeline: nil message body")

	// ErrNilContext is returned when Execute is called without a message context.
	ErrNilContext = errors.New("pipeline: nil message context")

	// ErrNilFinal is returned when Execute is called without a final delegate.
	ErrNilFinal = errors.New("pipeline: nil final delegate")
)
