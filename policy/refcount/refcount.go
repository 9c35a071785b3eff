// Package refcount implements the reference-counting retention strategy:
// entries stay cached while external holders are registered against them,
// and are swept once they have had no live holder for a grace period.
package refcount

import (
	"time"

	"github.com/samber/lo"

	"github.com/IvanBrykalov/asynccache/policy"
)

const (
	// DefaultCleanupInterval is the sweep period used when none is configured.
	DefaultCleanupInterval = 5 * time.Second
	// DefaultGracePeriod is the idle time a zero-reference entry is given
	// before it becomes eligible for eviction.
	DefaultGracePeriod = time.Second
)

// Options configures the strategy. Zero values select the defaults.
type Options struct {
	CleanupInterval time.Duration
	GracePeriod     time.Duration
}

type refcount struct {
	policy.Base

	grace  int64 // nanoseconds
	ticker policy.Ticker
}

// New returns a reference-counting policy.
func New(opt Options) policy.Policy {
	if opt.CleanupInterval <= 0 {
		opt.CleanupInterval = DefaultCleanupInterval
	}
	if opt.GracePeriod <= 0 {
		opt.GracePeriod = DefaultGracePeriod
	}
	return &refcount{
		grace:  int64(opt.GracePeriod),
		ticker: policy.Ticker{Interval: opt.CleanupInterval},
	}
}

func (p *refcount) Name() string { return "refcount" }

func (p *refcount) AddReference(e policy.Entry, h policy.Holder)    { e.Refs().Add(h) }
func (p *refcount) RemoveReference(e policy.Entry, h policy.Holder) { e.Refs().Remove(h) }

// Sweep prunes dead holders and returns entries that have no live holder
// and have been idle for longer than the grace period.
func (p *refcount) Sweep(entries []policy.Entry, now int64) []string {
	return lo.FilterMap(entries, func(e policy.Entry, _ int) (string, bool) {
		if e.Refs().Prune() > 0 {
			return "", false
		}
		return e.Token(), now-e.LastAccessedAt() > p.grace
	})
}

func (p *refcount) Start(sweep func()) { p.ticker.Start(sweep) }
func (p *refcount) Stop()              { p.ticker.Stop() }
