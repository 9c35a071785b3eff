package cache

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}
func (NoopMetrics) Computed(error)    {}

var _ Metrics = NoopMetrics{}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Entries      int
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	Computations uint64
	// Cancellations counts computations that ended with a cancellation error.
	Cancellations uint64
}
