package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/asynccache/future"
	"github.com/IvanBrykalov/asynccache/policy"
	"github.com/IvanBrykalov/asynccache/policy/manual"
	"github.com/IvanBrykalov/asynccache/policy/refcount"
)

// store is the Store implementation: one table guarded by one mutex, with
// the active policy consulted under that mutex.
type store[V any] struct {
	// ---- guarded by mu ----
	mu       sync.Mutex
	table    map[string]*entry[V]
	pol      policy.Policy
	disposed bool

	seq atomic.Uint64 // access stamps, strictly increasing

	opt Options[V]
	log *zap.Logger

	hits, misses, evictions, computations, cancellations atomic.Uint64
}

// New constructs a store with the provided Options and starts the policy's
// background sweep, if it has one.
// Defaults:
//   - nil Policy  -> refcount.New(refcount.Options{})
//   - nil Metrics -> NoopMetrics
//   - nil Logger  -> zap.NewNop()
func New[V any](opt Options[V]) Store[V] {
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = refcount.New(refcount.Options{})
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	s := &store[V]{
		table: make(map[string]*entry[V]),
		pol:   opt.Policy,
		opt:   opt,
		log:   opt.Logger.Named("asynccache").With(FieldPolicy(opt.Policy.Name())),
	}
	s.pol.Start(s.Sweep)
	return s
}

// ---- Store[V] implementation ----

// Get returns the entry's future, creating the entry on miss.
func (s *store[V]) Get(ctx context.Context, key any, fn ComputeFunc[V]) *future.Future[V] {
	return s.lookup(ctx, Normalize(key), fn).fut
}

// GetView returns a synchronous-read projection of Get's future.
func (s *store[V]) GetView(ctx context.Context, key any, fn ComputeFunc[V]) *View[V] {
	e := s.lookup(ctx, Normalize(key), fn)
	return newView(e.token, e.fut)
}

// Invalidate cancels and removes the entry for key, if any.
func (s *store[V]) Invalidate(key any) {
	token := Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.table[token]; ok {
		s.removeLocked(e, EvictInvalidated)
	}
}

// Clear cancels and removes every entry.
func (s *store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Dispose halts the policy timer, clears the table and falls back to manual
// retention. The timer is stopped before taking the lock: a sweep blocked
// on the lock would otherwise never let Stop return.
func (s *store[V]) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	pol := s.pol
	s.mu.Unlock()

	pol.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.pol = manual.New()
	s.log.Debug("store disposed")
}

// AddReference forwards to the policy when the key has an entry.
func (s *store[V]) AddReference(key any, holder policy.Holder) {
	token := Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.table[token]; ok {
		s.pol.AddReference(e, holder)
	}
}

// RemoveReference forwards to the policy when the key has an entry.
func (s *store[V]) RemoveReference(key any, holder policy.Holder) {
	token := Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.table[token]; ok {
		s.pol.RemoveReference(e, holder)
	}
}

// Sweep runs one policy sweep. A panicking cycle is logged and swallowed so
// the next tick still runs.
func (s *store[V]) Sweep() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("sweep cycle panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.table) == 0 {
		return
	}

	now := s.now()
	entries := lo.MapToSlice(s.table, func(_ string, e *entry[V]) policy.Entry { return e })
	victims := s.pol.Sweep(entries, now)
	for _, token := range victims {
		e, ok := s.table[token]
		if !ok {
			continue
		}
		reason := EvictSweep
		if s.pol.Expired(e, now) {
			reason = EvictExpired
		}
		s.removeLocked(e, reason)
	}
	if len(victims) > 0 {
		s.log.Debug("sweep finished", zap.Int("evicted", len(victims)), zap.Int("entries", len(s.table)))
	}
}

// Len returns the number of entries.
func (s *store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table)
}

// Stats returns a snapshot of the store counters.
func (s *store[V]) Stats() Stats {
	return Stats{
		Entries:       s.Len(),
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		Evictions:     s.evictions.Load(),
		Computations:  s.computations.Load(),
		Cancellations: s.cancellations.Load(),
	}
}

// ---- internals ----

// lookup returns the live entry for token, creating and starting it on miss.
func (s *store[V]) lookup(ctx context.Context, token string, fn ComputeFunc[V]) *entry[V] {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	now := s.now()
	if e, ok := s.table[token]; ok {
		if !s.pol.Expired(e, now) {
			e.touch(now, s.seq.Inc())
			s.pol.OnEntryAccessed(e)
			s.hits.Inc()
			s.opt.Metrics.Hit()
			s.mu.Unlock()
			return e
		}
		s.removeLocked(e, EvictExpired)
	}
	s.misses.Inc()
	s.opt.Metrics.Miss()

	if victim, ok := s.pol.ShouldAdmitNew(len(s.table)); ok {
		if v, ok := s.table[victim]; ok {
			s.removeLocked(v, EvictCapacity)
		}
	}

	e := newEntry[V](ctx, token, now, s.seq.Inc())
	s.table[token] = e
	s.pol.OnEntryCreated(e)
	s.opt.Metrics.Size(len(s.table))
	s.mu.Unlock()

	s.computations.Inc()
	go s.run(e, fn)
	return e
}

// run executes fn and settles the entry's future. A cancellation failure
// drops the entry (if it is still the table's entry for its token) before
// the future settles, so the next Get recomputes instead of replaying it.
func (s *store[V]) run(e *entry[V], fn ComputeFunc[V]) {
	v, err := call(e.ctx, fn)
	s.opt.Metrics.Computed(err)

	if err != nil && (IsCancellation(err) || e.canceled()) {
		s.cancellations.Inc()
		s.mu.Lock()
		if cur, ok := s.table[e.token]; ok && cur == e {
			s.removeLocked(e, EvictCanceled)
		}
		s.mu.Unlock()
	}
	e.fut.Complete(v, err)
}

// call invokes fn, converting a panic into an organic failure.
func call[V any](ctx context.Context, fn ComputeFunc[V]) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, errors.Wrapf(ErrComputePanic, "%v", r)
		}
	}()
	if fn == nil {
		return v, errors.New("cache: nil compute function")
	}
	return fn(ctx)
}

// removeLocked drops e from the table and notifies the policy and observers.
// Every removal cancels the computation except TTL expiry, which only makes
// the entry unreachable.
func (s *store[V]) removeLocked(e *entry[V], reason EvictReason) {
	delete(s.table, e.token)
	if reason != EvictExpired {
		e.abort(reason)
	}
	s.pol.OnEntryRemoved(e)

	s.evictions.Inc()
	s.opt.Metrics.Evict(reason)
	s.opt.Metrics.Size(len(s.table))
	if cb := s.opt.OnEvict; cb != nil {
		cb(e.token, reason)
	}
	if ce := s.log.Check(zap.DebugLevel, "entry removed"); ce != nil {
		ce.Write(FieldToken(e.token), FieldReason(reason))
	}
}

func (s *store[V]) clearLocked() {
	for _, e := range s.table {
		s.removeLocked(e, EvictCleared)
	}
}

func (s *store[V]) now() int64 {
	if s.opt.Clock != nil {
		return s.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}
