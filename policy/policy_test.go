package policy

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// --- test doubles ---

type probe struct{ alive bool }

func (p *probe) Alive() bool { return p.alive }

type component struct {
	name string
	buf  [64]byte // keep it out of the tiny allocator
}

// --- tests ---

func TestRefs_AddRemoveIdempotent(t *testing.T) {
	t.Parallel()

	var r Refs
	h := &probe{alive: true}
	r.Add(h)
	r.Add(h)
	require.Equal(t, 1, r.Len())

	r.Remove(h)
	r.Remove(h)
	require.Equal(t, 0, r.Len())
}

func TestRefs_PruneDropsDeadHolders(t *testing.T) {
	t.Parallel()

	var r Refs
	live, dead := &probe{alive: true}, &probe{alive: false}
	r.Add(live)
	r.Add(dead)

	assert.Equal(t, 1, r.Prune())
	assert.Equal(t, 1, r.Len())
}

func TestWeak_SameObjectSameIdentity(t *testing.T) {
	t.Parallel()

	c := &component{name: "a"}
	var r Refs
	r.Add(Weak(c))
	r.Add(Weak(c))
	require.Equal(t, 1, r.Len())

	r.Remove(Weak(c))
	require.Equal(t, 0, r.Len())
	runtime.KeepAlive(c)
}

func TestWeak_DoesNotKeepHolderAlive(t *testing.T) {
	var r Refs
	func() {
		c := &component{name: "gone"}
		r.Add(Weak(c))
		require.Equal(t, 1, r.Prune())
	}()

	// The holder is unreachable now; after collection it must be pruned.
	for i := 0; i < 5 && r.Len() > 0; i++ {
		runtime.GC()
		r.Prune()
	}
	require.Equal(t, 0, r.Len())
}

func TestTicker_StartStop(t *testing.T) {
	t.Parallel()

	calls := atomic.NewInt32(0)
	tk := &Ticker{Interval: 2 * time.Millisecond}
	tk.Start(func() { calls.Inc() })
	tk.Start(func() { t.Error("second Start must not arm another loop") })

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	tk.Stop()
	n := calls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, calls.Load(), "no ticks after Stop")

	tk.Stop() // idempotent
	tk.Start(func() { t.Error("stopped ticker must not restart") })
	time.Sleep(5 * time.Millisecond)
}

func TestTicker_ZeroIntervalNeverRuns(t *testing.T) {
	t.Parallel()

	tk := &Ticker{}
	tk.Start(func() { t.Error("zero interval must not tick") })
	time.Sleep(5 * time.Millisecond)
	tk.Stop()
}
