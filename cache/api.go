package cache

import (
	"context"

	"github.com/IvanBrykalov/asynccache/future"
	"github.com/IvanBrykalov/asynccache/policy"
)

// ComputeFunc produces the value for a key. ctx is cancelled when the entry
// is invalidated, evicted, cleared or the store is disposed; a function that
// gives up because of it should return an error IsCancellation recognises
// (returning ctx.Err() or context.Cause(ctx) is enough).
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Store is an in-memory cache of asynchronous computations.
// All methods are safe for concurrent use by multiple goroutines and none of
// them blocks on a computation.
//
// Keys are normalized with Normalize; any two keys with the same token share
// one entry.
type Store[V any] interface {
	// Get returns the deferred result for key, starting fn in a new
	// goroutine if no entry exists. Concurrent calls for the same key before
	// the computation settles share one invocation of fn.
	// ctx contributes values to the computation's context, not cancellation.
	Get(ctx context.Context, key any, fn ComputeFunc[V]) *future.Future[V]

	// GetView is Get wrapped in a synchronous-read projection.
	GetView(ctx context.Context, key any, fn ComputeFunc[V]) *View[V]

	// Invalidate cancels and removes the entry for key. Absent keys are a no-op.
	Invalidate(key any)

	// Clear cancels and removes every entry.
	Clear()

	// Dispose stops background sweeping and clears the store. Afterwards the
	// store keeps working as a manual-retention cache. Idempotent.
	Dispose()

	// AddReference registers holder's interest in the entry for key.
	// No-op if the key has no entry or the policy does not track references.
	AddReference(key any, holder policy.Holder)

	// RemoveReference deregisters holder from the entry for key.
	RemoveReference(key any, holder policy.Holder)

	// Sweep runs one retention cycle immediately.
	Sweep()

	// Len returns the number of entries.
	Len() int

	// Stats returns a snapshot of the store counters.
	Stats() Stats
}
