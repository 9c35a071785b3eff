// Package future provides a generic deferred value: a result that is
// pending until it is completed exactly once with a value or an error.
package future

import (
	"context"
	"sync"
)

// Future is a write-once (value, error) cell.
// All methods are safe for concurrent use.
//
// Publishing (val, err) happens-before close(done), so reads after <-Done()
// observe the final values. Observers registered with OnComplete run exactly
// once, on the goroutine that completes the future and before done is
// closed (or immediately on the caller's goroutine if the future is already
// complete).
type Future[V any] struct {
	done chan struct{}

	mu        sync.Mutex
	completed bool
	val       V
	err       error
	observers []func(V, error)
}

// New returns a pending future.
func New[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

// Resolved returns a future already completed with (v, err).
func Resolved[V any](v V, err error) *Future[V] {
	f := New[V]()
	f.Complete(v, err)
	return f
}

// Complete publishes the result and wakes every waiter.
// Only the first call has an effect; it reports whether it won.
func (f *Future[V]) Complete(v V, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.val, f.err = v, err
	obs := f.observers
	f.observers = nil
	f.mu.Unlock()

	// Observers run before waiters wake, so anything they publish is
	// visible to whoever returns from Done().
	for _, fn := range obs {
		notify(fn, v, err)
	}
	close(f.done)
	return true
}

// Done returns a channel closed once the future is complete.
func (f *Future[V]) Done() <-chan struct{} { return f.done }

// Ready reports whether the future is complete.
func (f *Future[V]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the future completes and returns its result.
func (f *Future[V]) Get() (V, error) {
	<-f.done
	return f.val, f.err
}

// Await is Get bounded by ctx. Cancelling ctx unblocks only this waiter;
// it has no effect on whoever completes the future.
func (f *Future[V]) Await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Result returns the result without blocking. ok is false while pending.
func (f *Future[V]) Result() (v V, ok bool, err error) {
	select {
	case <-f.done:
		return f.val, true, f.err
	default:
		return v, false, nil
	}
}

// OnComplete registers fn to observe the result.
// fn must not block or wait on f; it may run on the completing goroutine.
// A panic in fn is recovered and discarded so the remaining observers and
// every waiter still see the result.
func (f *Future[V]) OnComplete(fn func(V, error)) {
	f.mu.Lock()
	if !f.completed {
		f.observers = append(f.observers, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	notify(fn, v, err)
}

func notify[V any](fn func(V, error), v V, err error) {
	defer func() { _ = recover() }()
	fn(v, err)
}
