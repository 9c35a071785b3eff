// Package lru implements the least-recently-used retention strategy.
package lru

import (
	"container/list"

	"github.com/IvanBrykalov/asynccache/policy"
)

// lru is a classic "move-to-front" Least-Recently-Used policy with a fixed
// entry limit. The list is kept in access order (front = MRU), which is the
// same order as the entries' AccessSeq stamps, so the tail is always the
// entry with the smallest stamp.
type lru struct {
	policy.Base

	maxSize int
	order   *list.List               // MRU at Front() -> LRU at Back(); Value is token
	idx     map[string]*list.Element // token -> element
}

// New returns an LRU policy admitting at most maxSize entries.
// It panics if maxSize < 1.
func New(maxSize int) policy.Policy {
	if maxSize < 1 {
		panic("lru: maxSize must be > 0")
	}
	return &lru{
		maxSize: maxSize,
		order:   list.New(),
		idx:     make(map[string]*list.Element, maxSize),
	}
}

func (p *lru) Name() string { return "lru" }

// OnEntryCreated places the new entry at MRU.
func (p *lru) OnEntryCreated(e policy.Entry) {
	if el, ok := p.idx[e.Token()]; ok {
		p.order.MoveToFront(el)
		return
	}
	p.idx[e.Token()] = p.order.PushFront(e.Token())
}

// OnEntryAccessed promotes the entry to MRU.
func (p *lru) OnEntryAccessed(e policy.Entry) {
	if el, ok := p.idx[e.Token()]; ok {
		p.order.MoveToFront(el)
	}
}

// OnEntryRemoved forgets the entry.
func (p *lru) OnEntryRemoved(e policy.Entry) {
	if el, ok := p.idx[e.Token()]; ok {
		p.order.Remove(el)
		delete(p.idx, e.Token())
	}
}

// ShouldAdmitNew names the LRU entry once the table is full.
func (p *lru) ShouldAdmitNew(size int) (string, bool) {
	if size < p.maxSize {
		return "", false
	}
	back := p.order.Back()
	if back == nil {
		return "", false
	}
	return back.Value.(string), true
}
