package ratelimiter

import "errors"

var (
	// ErrInvalidConfig is returned for non-positive capacity, rate, or interval.
	ErrInvalidConfig = errors.New("ratelimiter: invalid configuration")

	// ErrInvalidTokenCount is returned when a consume request asks for
	// zero or negative tokens.
	ErrInvalidTokenCount = errors.New("ratelimiter: invalid token count")

	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("ratelimiter: store unavailable")
)
