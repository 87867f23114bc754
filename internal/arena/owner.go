package arena

import (
	"context"

	"go.uber.org/zap"
)

// Owner represents the single logical owner of a set of contexts: in
// practice, one worker goroutine. Go has no thread-local storage the way
// the original C port assumed; an explicit *Owner value held by each
// worker goroutine is this port's stand-in (see SPEC_FULL.md §5). An Owner
// must never be shared between goroutines running concurrently — handing
// one off to another goroutine is fine as long as the handoff is
// synchronized (e.g. by sending it over a channel) and the previous
// goroutine stops using it.
type Owner struct {
	pool   *Pool
	peak   peakTracker
	logger *zap.Logger
}

// NewOwner creates an Owner with its own context pool.
func NewOwner() *Owner {
	o := &Owner{}
	o.pool = newPool(o)
	return o
}

// Acquire returns a context ready for use, preferring one from the pool
// sized close to this owner's recent usage pattern over allocating a new
// one from scratch. It calls New (context_new) on a pool miss, so ctx
// cancellation or an allocation failure surfaces to the caller instead of
// panicking.
func (o *Owner) Acquire(ctx context.Context) (*Context, error) {
	hint := o.peak.average()
	if c := o.pool.take(hint); c != nil {
		c.owner = o
		contextsReused.Inc()
		return c, nil
	}
	c, err := New(ctx, hint)
	if err != nil {
		o.logWarn("arena: failed to allocate fresh context", zap.Error(err))
		return nil, err
	}
	c.owner = o
	contextsAllocated.Inc()
	o.logDebug("arena: allocated fresh context", zap.Uint32("size_hint", hint))
	return c, nil
}

// Release folds the context's observed high-water mark into this owner's
// rolling average, trims it back to a sane capacity for that average (or
// its piggybacked hint, whichever is larger), resets it, and returns it to
// the pool for reuse. Release must only be called once a context's
// ObjCount has reached zero
// and it has no outstanding snapshots; callers violating this get
// ErrContextInUse or ErrContextBusy back and the context is left
// untouched.
func (o *Owner) Release(c *Context) error {
	if c == nil {
		return nil
	}
	if c.objCount != 0 {
		o.logWarn("arena: release called with live objects still attached", zap.Int32("obj_count", c.objCount))
		return ErrContextInUse
	}
	if c.snapshotsOut != 0 {
		o.logWarn("arena: release called with outstanding snapshots", zap.Int("snapshots_out", c.snapshotsOut))
		return ErrContextBusy
	}
	o.peak.record(c.HighWater())
	peakUsageBytes.Observe(float64(c.HighWater()))

	target := o.peak.average()
	if hint := c.PeakHistoryHint(); hint > target {
		target = hint
	}
	c.trimToCapacity(target * PoolTrimSlackMultiplier)

	c.reset()
	c.owner = nil
	if err := o.pool.give(c); err != nil {
		return err
	}
	contextsReleased.Inc()
	return nil
}

// Handoff prepares a context to be passed to another Owner (typically a
// different worker goroutine, over a channel). It folds the context's own
// high-water mark into this owner's rolling average as if it had just
// been released, then stamps that average onto the context so the
// receiving owner's pool can size itself correctly even if the receiving
// owner rarely allocates contexts of its own. This is the piggybacking
// mechanism: no separate out-of-band message is needed to convey producer
// sizing behavior to a consumer.
func (o *Owner) Handoff(c *Context) *Context {
	o.peak.record(c.HighWater())
	c.SetPeakHistoryHint(o.peak.average())
	c.owner = nil
	return c
}

// Adopt accepts a context produced by Handoff, folding its piggybacked
// peak-usage hint into this owner's own rolling average before treating
// the context as normal. Call this once, right after receiving a context
// over a channel from another owner, before using it.
func (o *Owner) Adopt(c *Context) *Context {
	if hint := c.PeakHistoryHint(); hint > 0 {
		o.peak.record(hint)
		c.SetPeakHistoryHint(0)
	}
	c.owner = o
	return c
}

// Abort force-releases a context regardless of its obj_count, for the
// malformed-input case where deserialization fails partway through
// populating a fresh context and no object exists to drive the usual
// dec-triggered release (spec §7: "the arena layer responds by explicitly
// freeing the Context"). Unlike Release, the context is never pooled —
// its blocks are dropped immediately so a half-populated context can't be
// handed back out by a later Acquire.
func (o *Owner) Abort(c *Context) {
	if c == nil {
		return
	}
	o.logWarn("arena: aborting partially constructed context", zap.Uint32("used", c.Used()))
	c.blocks = nil
	c.objCount = 0
	c.snapshotsOut = 0
	c.owner = nil
	contextsReleased.Inc()
}

// PeakAverage exposes the owner's current rolling peak-usage average,
// mainly for metrics and tests.
func (o *Owner) PeakAverage() uint32 { return o.peak.average() }

// Close releases every context held in this owner's pool back to the
// system allocator (by simply dropping references), leaving the pool
// unusable.
func (o *Owner) Close() { o.pool.close() }
