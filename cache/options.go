package cache

import (
	"go.uber.org/zap"

	"github.com/IvanBrykalov/asynccache/policy"
)

// EvictReason explains why an entry left the table.
type EvictReason int

const (
	// EvictInvalidated — removed by an explicit Invalidate call.
	EvictInvalidated EvictReason = iota
	// EvictCapacity — removed to admit a new entry (LRU).
	EvictCapacity
	// EvictExpired — dropped because its TTL elapsed. The computation, if
	// still running, is not cancelled; its result is discarded.
	EvictExpired
	// EvictSweep — collected by the policy's periodic sweep.
	EvictSweep
	// EvictCleared — removed by Clear or Dispose.
	EvictCleared
	// EvictCanceled — the computation failed with a cancellation error.
	EvictCanceled
)

func (r EvictReason) String() string {
	switch r {
	case EvictInvalidated:
		return "invalidated"
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	case EvictSweep:
		return "sweep"
	case EvictCleared:
		return "cleared"
	case EvictCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Metrics exposes store-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
	// Computed is called once per computation with its outcome.
	Computed(err error)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the store. Zero values are safe;
// defaults are applied in New():
//   - nil Policy  => reference counting with its default interval and grace
//   - nil Metrics => NoopMetrics
//   - nil Logger  => zap.NewNop()
//   - nil Clock   => time.Now()
type Options[V any] struct {
	// Policy is the retention strategy. Exactly one instance per store;
	// do not share a Policy between stores.
	Policy policy.Policy

	// Observability
	// OnEvict is called under the store lock; keep it lightweight.
	OnEvict func(token string, reason EvictReason)
	Metrics Metrics
	Logger  *zap.Logger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}
