package dbkit

import (
	"context"
	"sync"
)

// Future is the result of an operation that may not have completed yet.
//
// A Future is completed exactly once. Callers can block on [Future.Result], select on
// [Future.Done], or register a continuation with [Future.OnComplete].
type Future[T any] struct {
	done      chan struct{}
	mu        sync.Mutex
	completed bool
	val       T
	err       error
	callbacks []func(T, error)
}

// NewPromise returns a pending [Future] and the function that completes it.
//
// Only the first call to the complete function has any effect.
func NewPromise[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{
		done: make(chan struct{}),
	}

	return f, f.complete
}

// Resolved returns a completed [Future] holding val.
func Resolved[T any](val T) *Future[T] {
	f, complete := NewPromise[T]()
	complete(val, nil)
	return f
}

// Failed returns a completed [Future] holding err.
func Failed[T any](err error) *Future[T] {
	f, complete := NewPromise[T]()

	var zero T
	complete(zero, err)
	return f
}

// Go runs fn on a new goroutine and returns a [Future] for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f, complete := NewPromise[T]()
	go func() {
		complete(fn())
	}()

	return f
}

func (f *Future[T]) complete(val T, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}

	f.completed = true
	f.val = val
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(val, err)
	}
}

// Done returns a channel that is closed when the Future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the Future completes or ctx is done.
func (f *Future[T]) Result(ctx context.Context) (T, error) {
	if val, done, err := f.Poll(); done {
		return val, err
	}

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll returns the result without blocking. done is false while the Future is pending.
func (f *Future[T]) Poll() (val T, done bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.completed {
		return val, false, nil
	}
	return f.val, true, f.err
}

// OnComplete registers fn to be called with the result.
//
// If the Future has already completed, fn is called immediately on the calling goroutine.
// Otherwise it is called on the goroutine that completes the Future.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	val, err := f.val, f.err
	f.mu.Unlock()

	fn(val, err)
}
