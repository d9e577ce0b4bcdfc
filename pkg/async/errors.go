package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the computation does
	// not resolve within the given duration.
	ErrTimeout = errors.New("async: await timeout")
	// ErrNoFutures is returned by WaitAny when called with no futures.
	ErrNoFutures = errors.New("async: no futures provided")
)
