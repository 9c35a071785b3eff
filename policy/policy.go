// Package policy defines the retention capability set shared by the cache
// store and its strategies (reference counting, LRU, TTL, manual).
package policy

// Entry is the read-only view a strategy gets of a cached entry.
// Timestamps are UnixNano values taken from the store's clock.
//
// Concurrency: strategies see entries only from callbacks that the store
// invokes under its lock; do not retain entries past OnEntryRemoved.
type Entry interface {
	// Token is the canonical lookup key of the entry.
	Token() string
	CreatedAt() int64
	LastAccessedAt() int64
	// AccessSeq is a store-wide strictly increasing stamp, refreshed on
	// every hit. It is only meaningful as a comparison key.
	AccessSeq() uint64
	// Refs is the entry's weak holder set.
	Refs() *Refs
}

// Policy decides when entries become eligible for eviction.
// Exactly one Policy instance is active per store.
//
// Semantics:
//   - OnEntryCreated/OnEntryAccessed/OnEntryRemoved keep policy state in
//     sync with the store's table. The store performs the actual removal.
//   - Expired is consulted on every lookup before a hit is served; an expired
//     entry is dropped and recomputed.
//   - ShouldAdmitNew is consulted before a new entry is inserted into a table
//     of the given size and may name one victim token to evict first.
//   - Sweep returns tokens to evict during a periodic scan.
//   - Start arms the background timer (if any) that calls sweep; Stop halts
//     it and waits for an in-progress sweep callback to return. Stop is never
//     called while the store lock is held.
//
// All methods except Start/Stop are invoked under the store lock.
type Policy interface {
	Name() string

	OnEntryCreated(Entry)
	OnEntryAccessed(Entry)
	OnEntryRemoved(Entry)

	Expired(e Entry, now int64) bool
	ShouldAdmitNew(size int) (victim string, ok bool)
	Sweep(entries []Entry, now int64) []string

	AddReference(e Entry, h Holder)
	RemoveReference(e Entry, h Holder)

	Start(sweep func())
	Stop()
}

// Base is a no-op Policy. Strategies embed it and override what they need.
type Base struct{}

func (Base) OnEntryCreated(Entry)              {}
func (Base) OnEntryAccessed(Entry)             {}
func (Base) OnEntryRemoved(Entry)              {}
func (Base) Expired(Entry, int64) bool         { return false }
func (Base) ShouldAdmitNew(int) (string, bool) { return "", false }
func (Base) Sweep([]Entry, int64) []string     { return nil }
func (Base) AddReference(Entry, Holder)        {}
func (Base) RemoveReference(Entry, Holder)     {}
func (Base) Start(func())                      {}
func (Base) Stop()                             {}
