package cache

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/IvanBrykalov/asynccache/future"
	"github.com/IvanBrykalov/asynccache/policy"
)

// entry is the cached state of one token: the deferred result, the
// cancellation handle of its computation, and retention metadata.
// All fields except fut are guarded by the store lock.
type entry[V any] struct {
	token string
	fut   *future.Future[V]

	ctx    context.Context
	cancel context.CancelCauseFunc

	createdAt      int64 // UnixNano, immutable
	lastAccessedAt int64 // UnixNano, refreshed on every hit
	seq            uint64

	refs policy.Refs
}

// newEntry allocates an entry with a fresh cancellation scope derived from
// parent. Parent values are visible to the computation but parent
// cancellation is not: the computation is shared by every caller.
func newEntry[V any](parent context.Context, token string, now int64, seq uint64) *entry[V] {
	ctx, cancel := context.WithCancelCause(context.WithoutCancel(parent))
	return &entry[V]{
		token:          token,
		fut:            future.New[V](),
		ctx:            ctx,
		cancel:         cancel,
		createdAt:      now,
		lastAccessedAt: now,
		seq:            seq,
	}
}

// abort requests cooperative cancellation. Idempotent.
func (e *entry[V]) abort(reason EvictReason) {
	e.cancel(errors.Wrapf(ErrCanceled, "entry %q %s", e.token, reason))
}

// canceled reports whether abort was called.
func (e *entry[V]) canceled() bool { return e.ctx.Err() != nil }

func (e *entry[V]) touch(now int64, seq uint64) {
	e.lastAccessedAt = now
	e.seq = seq
}

// policy.Entry implementation.

func (e *entry[V]) Token() string         { return e.token }
func (e *entry[V]) CreatedAt() int64      { return e.createdAt }
func (e *entry[V]) LastAccessedAt() int64 { return e.lastAccessedAt }
func (e *entry[V]) AccessSeq() uint64     { return e.seq }
func (e *entry[V]) Refs() *policy.Refs    { return &e.refs }

var _ policy.Entry = (*entry[int])(nil)
