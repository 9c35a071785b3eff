// Package cache provides an in-memory cache of asynchronous computations
// (typically network fetches) keyed by arbitrary identifiers, with pluggable
// retention policies and cooperative cancellation of in-flight work.
//
// Design
//
//   - Keys: any value. Strings are used as-is; anything else (usually a
//     slice such as []any{"user", 42}) is normalized to canonical JSON.
//     See Normalize.
//
//   - Entries: one per token. An entry holds the computation's future, its
//     cancellation scope, creation/access timestamps and a store-wide access
//     stamp. Concurrent Get calls for a token share a single computation
//     (single-flight) until the entry is removed.
//
//   - Concurrency: the table is guarded by one mutex per store. Computations
//     run in their own goroutines; no Store method waits for them.
//
//   - Policies: retention is pluggable via the policy package. Reference
//     counting is the default; LRU, TTL and manual are provided. Policies
//     with a background sweep run it on a single ticker per store.
//
//   - Cancellation: every removal (Invalidate, LRU capacity, sweep, Clear,
//     Dispose) cancels the entry's context, except TTL expiry which only makes
//     the entry unreachable. A computation that fails with a cancellation
//     error (see IsCancellation) is dropped so the next Get retries; any other
//     failure stays cached until invalidated.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size/Computed signals.
//     By default NoopMetrics is used; metrics/prom exports them to Prometheus.
//
// Basic usage
//
//	s := cache.New[[]byte](cache.Options[[]byte]{})
//	defer s.Dispose()
//
//	f := s.Get(ctx, []any{"user", 42}, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx, "/users/42")
//	})
//	body, err := f.Await(ctx)
//
// With LRU
//
//	s := cache.New[string](cache.Options[string]{Policy: lru.New(1024)})
//
// With TTL
//
//	s := cache.New[string](cache.Options[string]{
//	    Policy: ttl.New(ttl.Options{TTL: 30 * time.Second}),
//	})
//
// Reference counting
//
//	s := cache.New[*User](cache.Options[*User]{}) // refcount by default
//	v := s.GetView(ctx, key, load)
//	s.AddReference(key, policy.Weak(widget))      // keeps the entry while widget lives
//	defer s.RemoveReference(key, policy.Weak(widget))
//
// Synchronous reads
//
//	val, err := v.Read()
//	if errors.Is(err, cache.ErrNotReady) {
//	    // suspend; resume when the pending future is done
//	}
package cache
