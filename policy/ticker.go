package policy

import (
	"sync"
	"time"
)

// Ticker runs one background sweep loop at a fixed interval.
// Start is idempotent while running; Stop halts the loop and waits for it
// to exit, so no sweep callback runs after Stop returns. A stopped Ticker
// cannot be restarted.
type Ticker struct {
	Interval time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	exited  chan struct{}
}

// Start launches the loop calling fn every Interval.
func (t *Ticker) Start(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.stopped || t.Interval <= 0 {
		return
	}
	t.started = true
	t.stop = make(chan struct{})
	t.exited = make(chan struct{})

	go t.loop(fn, t.stop, t.exited)
}

func (t *Ticker) loop(fn func(), stop <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	tk := time.NewTicker(t.Interval)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			// Stop may race with a tick; prefer stopping.
			select {
			case <-stop:
				return
			default:
			}
			fn()
		}
	}
}

// Stop halts the loop. Safe to call multiple times and before Start.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	started := t.started
	t.mu.Unlock()

	if started {
		close(t.stop)
		<-t.exited
	}
}
