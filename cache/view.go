package cache

import (
	"go.uber.org/atomic"

	"github.com/IvanBrykalov/asynccache/future"
)

const (
	viewPending int32 = iota
	viewSucceeded
	viewFailed
)

// View is the synchronous-read projection of a cached computation.
// Its status is flipped by an observer attached to the future when the
// view is built; Read never blocks and never polls the future.
type View[V any] struct {
	token  string
	fut    *future.Future[V]
	status atomic.Int32

	// written once before status leaves viewPending
	val V
	err error
}

func newView[V any](token string, fut *future.Future[V]) *View[V] {
	v := &View[V]{token: token, fut: fut}
	fut.OnComplete(func(val V, err error) {
		if err != nil {
			v.err = err
			v.status.Store(viewFailed)
			return
		}
		v.val = val
		v.status.Store(viewSucceeded)
	})
	return v
}

// Read returns the value once the computation succeeded, or its failure
// once it failed. While pending it returns a *NotReadyError carrying the
// pending future, which matches ErrNotReady:
//
//	v, err := view.Read()
//	var nr *cache.NotReadyError[T]
//	if errors.As(err, &nr) {
//	    <-nr.Pending.Done() // then Read again
//	}
func (v *View[V]) Read() (V, error) {
	switch v.status.Load() {
	case viewSucceeded:
		return v.val, nil
	case viewFailed:
		var zero V
		return zero, v.err
	default:
		var zero V
		return zero, &NotReadyError[V]{Token: v.token, Pending: v.fut}
	}
}

// Future returns the underlying deferred value.
func (v *View[V]) Future() *future.Future[V] { return v.fut }
