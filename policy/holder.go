package policy

import "weak"

// Holder is an external object that registers interest in an entry.
// The engine only asks whether it is still alive; it never keeps it alive.
//
// Holders are used as map keys, so implementations must be comparable and
// two registrations of the same object must compare equal.
type Holder interface {
	Alive() bool
}

// Weak returns a Holder backed by a weak pointer to p.
// Two Weak holders built from the same pointer compare equal, even after
// the object has been collected.
func Weak[T any](p *T) Holder {
	return weakHolder[T]{p: weak.Make(p)}
}

type weakHolder[T any] struct{ p weak.Pointer[T] }

func (h weakHolder[T]) Alive() bool { return h.p.Value() != nil }

// Refs is the holder set of one entry. Membership, not ownership.
// Not safe for concurrent use; the store serializes access.
type Refs struct {
	m map[Holder]struct{}
}

// Add registers h. Adding the same holder twice is a no-op.
func (r *Refs) Add(h Holder) {
	if r.m == nil {
		r.m = make(map[Holder]struct{})
	}
	r.m[h] = struct{}{}
}

// Remove deregisters h if present.
func (r *Refs) Remove(h Holder) { delete(r.m, h) }

// Len returns the number of registered holders, dead ones included.
func (r *Refs) Len() int { return len(r.m) }

// Prune drops holders that are no longer alive and returns the live count.
func (r *Refs) Prune() int {
	for h := range r.m {
		if !h.Alive() {
			delete(r.m, h)
		}
	}
	return len(r.m)
}
