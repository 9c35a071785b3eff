package refcount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/asynccache/policy"
)

// --- test doubles ---

type testEntry struct {
	token    string
	accessed int64
	refs     policy.Refs
}

func (e *testEntry) Token() string         { return e.token }
func (e *testEntry) CreatedAt() int64      { return 0 }
func (e *testEntry) LastAccessedAt() int64 { return e.accessed }
func (e *testEntry) AccessSeq() uint64     { return 0 }
func (e *testEntry) Refs() *policy.Refs    { return &e.refs }

type probe struct{ alive bool }

func (p *probe) Alive() bool { return p.alive }

// --- tests ---

func TestRefcount_GracePeriod(t *testing.T) {
	t.Parallel()

	p := New(Options{GracePeriod: time.Second})
	e := &testEntry{token: "k", accessed: 0}
	entries := []policy.Entry{e}

	assert.Empty(t, p.Sweep(entries, int64(500*time.Millisecond)), "inside grace period")
	assert.Empty(t, p.Sweep(entries, int64(time.Second)), "exactly at the deadline is not past it")
	assert.Equal(t, []string{"k"}, p.Sweep(entries, int64(time.Second)+1))
}

func TestRefcount_LiveHolderKeepsEntry(t *testing.T) {
	t.Parallel()

	p := New(Options{GracePeriod: time.Millisecond})
	e := &testEntry{token: "k"}
	h := &probe{alive: true}
	p.AddReference(e, h)

	now := int64(time.Hour)
	require.Empty(t, p.Sweep([]policy.Entry{e}, now))

	p.RemoveReference(e, h)
	require.Equal(t, []string{"k"}, p.Sweep([]policy.Entry{e}, now))
}

func TestRefcount_DeadHolderIsPrunedAtSweep(t *testing.T) {
	t.Parallel()

	p := New(Options{GracePeriod: time.Millisecond})
	e := &testEntry{token: "k"}
	h := &probe{alive: true}
	p.AddReference(e, h)
	h.alive = false

	require.Equal(t, []string{"k"}, p.Sweep([]policy.Entry{e}, int64(time.Hour)))
	require.Equal(t, 0, e.refs.Len(), "dead holder must be pruned")
}

func TestRefcount_Defaults(t *testing.T) {
	t.Parallel()

	p := New(Options{}).(*refcount)
	assert.Equal(t, int64(DefaultGracePeriod), p.grace)
	assert.Equal(t, DefaultCleanupInterval, p.ticker.Interval)
	assert.Equal(t, "refcount", p.Name())
}

func TestRefcount_StartStopRunsSweep(t *testing.T) {
	t.Parallel()

	p := New(Options{CleanupInterval: time.Millisecond})
	ran := make(chan struct{}, 1)
	p.Start(func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("sweep never ran")
	}
	p.Stop()
}
