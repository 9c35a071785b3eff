package cache

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/IvanBrykalov/asynccache/future"
)

// CancelCode is the code token carried by cancellation errors that expose
// a Code() string method.
const CancelCode = "canceled"

var (
	// ErrCanceled is the cause attached to an entry's context when the
	// entry is invalidated, evicted, cleared or the store is disposed.
	ErrCanceled = errors.New("cache: computation canceled")

	// ErrNotReady is matched (errors.Is) by the error View.Read returns
	// while the computation is pending.
	ErrNotReady = errors.New("cache: value not ready")

	// ErrComputePanic wraps a panic raised by a compute function.
	ErrComputePanic = errors.New("cache: compute function panicked")
)

// IsCancellation reports whether err is a cancellation failure, as opposed
// to an organic one. Both recognised forms are checked: a flagged
// cancellation kind (context.Canceled, ErrCanceled, or an error with
// Canceled() bool returning true) and an error carrying CancelCode in its
// Code() string method. Wrapped chains are walked.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrCanceled) {
		return true
	}
	var flagged interface{ Canceled() bool }
	if errors.As(err, &flagged) && flagged.Canceled() {
		return true
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) && coded.Code() == CancelCode {
		return true
	}
	return false
}

// NotReadyError is returned by View.Read while the computation is pending.
// Pending lets the caller wait for the value and read again.
type NotReadyError[V any] struct {
	Token   string
	Pending *future.Future[V]
}

func (e *NotReadyError[V]) Error() string { return "cache: value not ready for " + e.Token }

// Is makes errors.Is(err, ErrNotReady) hold.
func (e *NotReadyError[V]) Is(target error) bool { return target == ErrNotReady }
