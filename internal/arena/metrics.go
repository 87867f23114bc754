package arena

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsRegisterOnce sync.Once

	contextsAllocated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "arena",
		Name:      "contexts_allocated_total",
		Help:      "Number of contexts allocated from scratch rather than reused from a pool.",
	})
	contextsReused = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "arena",
		Name:      "contexts_reused_total",
		Help:      "Number of contexts handed out from an owner's pool instead of being freshly allocated.",
	})
	contextsReleased = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "arena",
		Name:      "contexts_released_total",
		Help:      "Number of contexts released back to their owner's pool or discarded by Abort.",
	})
	blocksGrown = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "arena",
		Name:      "blocks_grown_total",
		Help:      "Number of additional blocks allocated because a context outgrew its current block.",
	})
	allocationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "arena",
		Name:      "allocation_failures_total",
		Help:      "Number of Alloc calls or New context creations that failed, either because a request exceeded MaxSingleAlloc or the system allocator was exhausted.",
	})
	peakUsageBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sysrepo",
		Subsystem: "arena",
		Name:      "context_peak_usage_bytes",
		Help:      "High-water mark of bytes used, observed per context at release time.",
		Buckets:   prometheus.ExponentialBuckets(MinBlockSize, 2, 12),
	})
)

// RegisterMetrics registers the arena package's prometheus collectors with
// reg. Safe to call multiple times and from multiple goroutines; only the
// first call takes effect, matching how the rest of this codebase's
// ancestry (see buildbarn-style block allocators) guards
// prometheus.MustRegister with a sync.Once so importing a package twice in
// test binaries doesn't panic.
func RegisterMetrics(reg prometheus.Registerer) {
	metricsRegisterOnce.Do(func() {
		reg.MustRegister(
			contextsAllocated,
			contextsReused,
			contextsReleased,
			blocksGrown,
			allocationFailures,
			peakUsageBytes,
		)
	})
}
