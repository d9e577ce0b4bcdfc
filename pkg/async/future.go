package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation producing a
// value of type T. A Future resolves exactly once.
type Future[T any] struct {
	value T
	err   error
	once  sync.Once
	done  chan struct{}
}

// Await blocks until the computation completes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits for the computation to complete or the timeout to
// elapse, whichever happens first. On timeout it returns the zero value of T
// and ErrTimeout.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Run executes fn on a new goroutine and returns a Future for its result.
// If ctx is already canceled the future resolves immediately with ctx.Err()
// and fn never runs.
func Run[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	select {
	case <-ctx.Done():
		var zero T
		f.resolve(zero, ctx.Err())
		return f
	default:
	}

	go func() {
		value, err := fn(ctx, param)
		f.resolve(value, err)
	}()

	return f
}

// WaitAll waits for every future to resolve and returns their values in
// argument order. The first non-nil error encountered is returned alongside
// the values gathered so far.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	values := make([]T, 0, len(futures))
	for _, future := range futures {
		value, err := future.Await()
		if err != nil {
			return values, err
		}
		values = append(values, value)
	}
	return values, nil
}

// WaitAny blocks until the first future resolves and returns its index and
// result. The remaining goroutines it spawns exit once their futures resolve.
func WaitAny[T any](futures ...*Future[T]) (int, T, error) {
	if len(futures) == 0 {
		var zero T
		return -1, zero, ErrNoFutures
	}

	type outcome struct {
		index int
		value T
		err   error
	}
	done := make(chan outcome, 1)

	for i, future := range futures {
		go func(index int, f *Future[T]) {
			value, err := f.Await()
			select {
			case done <- outcome{index, value, err}:
			default:
			}
		}(i, future)
	}

	res := <-done
	return res.index, res.value, res.err
}
