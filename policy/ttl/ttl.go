// Package ttl implements the time-to-live retention strategy.
//
// Freshness is checked synchronously on every lookup (Expired); the
// background sweep only collects expired entries nobody asked for since.
package ttl

import (
	"time"

	"github.com/samber/lo"

	"github.com/IvanBrykalov/asynccache/policy"
)

// MinCleanupInterval is the floor applied to the sweep period.
const MinCleanupInterval = time.Second

// Options configures the strategy. TTL is required.
type Options struct {
	TTL time.Duration
	// CleanupInterval defaults to TTL/2, and is never below MinCleanupInterval.
	CleanupInterval time.Duration
}

type ttl struct {
	policy.Base

	ttl    int64 // nanoseconds
	ticker policy.Ticker
}

// New returns a TTL policy. It panics if opt.TTL <= 0.
func New(opt Options) policy.Policy {
	if opt.TTL <= 0 {
		panic("ttl: TTL must be > 0")
	}
	return &ttl{
		ttl:    int64(opt.TTL),
		ticker: policy.Ticker{Interval: CleanupInterval(opt)},
	}
}

// CleanupInterval returns the effective sweep period for opt.
func CleanupInterval(opt Options) time.Duration {
	iv := opt.CleanupInterval
	if iv <= 0 {
		iv = opt.TTL / 2
	}
	if iv < MinCleanupInterval {
		iv = MinCleanupInterval
	}
	return iv
}

func (p *ttl) Name() string { return "ttl" }

// Expired reports whether e is older than the TTL (by creation time).
func (p *ttl) Expired(e policy.Entry, now int64) bool {
	return now-e.CreatedAt() > p.ttl
}

// Sweep returns every expired entry.
func (p *ttl) Sweep(entries []policy.Entry, now int64) []string {
	return lo.FilterMap(entries, func(e policy.Entry, _ int) (string, bool) {
		return e.Token(), p.Expired(e, now)
	})
}

func (p *ttl) Start(sweep func()) { p.ticker.Start(sweep) }
func (p *ttl) Stop()              { p.ticker.Stop() }
