package arena

import (
	"context"
	"fmt"
)

// Context is a bump-allocated arena grouping one object and all of its
// shallow copies. All operations on a Context (and on values allocated from
// it) must be performed by a single owner at a time; see Owner for the
// handoff convention. There is deliberately no mutex here: the absence of
// locking is the point, not an oversight.
type Context struct {
	blocks []*block

	// objCount tracks how many live objects reference this context. It
	// is a plain int32, not an atomic: only the current owner ever
	// touches a Context, so there is no concurrent writer to guard
	// against.
	objCount int32

	// highWater is the running maximum of total bytes used across all
	// blocks, sampled after every Alloc. The spec leaves the choice
	// between high-water mark and final-used-at-release ambiguous; this
	// port fixes it to high-water mark (see SPEC_FULL.md §4.4) since that
	// is what lets a consumer owner size its next context for the worst
	// case it has actually seen, not merely the last case.
	highWater uint32

	// peakHistoryHint is stamped by a producer thread's Owner onto a
	// Context handed to a consumer, piggybacking the producer's rolling
	// average peak usage so the consumer can size its own pool correctly
	// even if it rarely allocates contexts itself. Zero means "no hint".
	peakHistoryHint uint32

	snapshotsOut int

	// owner, when non-nil, is the Owner this Context currently belongs
	// to. Owner sets and clears it as the context moves between owners;
	// nothing reads it, and it is never used to synchronize.
	owner *Owner
}

// newContext allocates a fresh Context with an initial block sized to hint
// bytes (or MinBlockSize if hint is smaller). hint is typically the caller's
// Owner's peak-usage average, so a context starts life already sized for
// what its owner typically needs instead of growing block-by-block.
func newContext(hint uint32) *Context {
	c := &Context{}
	size := hint
	if size < MinBlockSize {
		size = MinBlockSize
	}
	c.blocks = append(c.blocks, newBlock(size))
	return c
}

// New is the arena's public context_new entry point (spec.md §4.2):
// allocates a fresh Context sized by hint, honoring ctx cancellation
// before doing any work and converting an allocation panic (e.g. an
// oversized or overflowing size request reaching the underlying make())
// into an *OOMError instead of letting it escape. hint is typically the
// caller's Owner's peak-usage average.
func New(ctx context.Context, hint uint32) (c *Context, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			allocationFailures.Inc()
			c = nil
			err = &OOMError{Err: ErrOutOfMemory, Detail: fmt.Sprint(r)}
		}
	}()
	return newContext(hint), nil
}

// AllocAligned carves n bytes, aligned to alignment, out of the context.
// It first-fits over at most the last MaxTrailingBlocksForAlloc blocks,
// tail first, reusing room left behind by an earlier allocation that
// didn't fill its block; older blocks are never revisited, so allocation
// cost stays bounded regardless of how long a context has been growing.
// If none of the trailing blocks fit, it grows a new one. Returns
// ErrTooLarge if n exceeds MaxSingleAlloc.
func (c *Context) AllocAligned(n, alignment uint32) ([]byte, error) {
	if n > MaxSingleAlloc {
		allocationFailures.Inc()
		return nil, ErrTooLarge
	}
	if alignment == 0 {
		alignment = DefaultAlignment
	}
	window := MaxTrailingBlocksForAlloc
	if window > len(c.blocks) {
		window = len(c.blocks)
	}
	for i := 0; i < window; i++ {
		b := c.blocks[len(c.blocks)-1-i]
		if buf, ok := b.alloc(n, alignment); ok {
			c.recordUsage()
			return buf, nil
		}
	}
	var prevSize uint32
	if len(c.blocks) > 0 {
		prevSize = c.blocks[len(c.blocks)-1].cap()
	}
	nb := newBlock(nextBlockSize(prevSize, n+alignment))
	buf, ok := nb.alloc(n, alignment)
	if !ok {
		allocationFailures.Inc()
		return nil, &OOMError{Err: ErrOutOfMemory, Detail: "grown block still too small for request"}
	}
	c.blocks = append(c.blocks, nb)
	blocksGrown.Inc()
	c.recordUsage()
	return buf, nil
}

// Alloc allocates n bytes at default alignment. Its signature matches
// bsatn.Allocator, so a *Context can be passed anywhere that interface is
// expected: it is the allocator shim described in SPEC_FULL.md §4.3,
// requiring no adapter type.
func (c *Context) Alloc(n uint32) ([]byte, error) { return c.AllocAligned(n, DefaultAlignment) }

// Free is a no-op: individual allocations within a context are never
// released piecemeal, only the whole context at once (via reset or
// release back to a Pool). It exists so Context satisfies bsatn.Allocator,
// which expects a Free counterpart to Alloc.
func (c *Context) Free([]byte) {}

func (c *Context) recordUsage() {
	var total uint32
	for _, b := range c.blocks {
		total += b.used()
	}
	if total > c.highWater {
		c.highWater = total
	}
}

// Inc increments the context's live-object count. Called whenever a new
// object (or shallow copy) starts referencing this context.
func (c *Context) Inc() { c.objCount++ }

// Dec decrements the context's live-object count. Called whenever an
// object referencing this context is destroyed. Returns the count after
// decrementing.
func (c *Context) Dec() int32 {
	c.objCount--
	return c.objCount
}

// ObjCount reports the number of live objects currently referencing this
// context.
func (c *Context) ObjCount() int32 { return c.objCount }

// HighWater reports the running peak of total bytes used across all
// blocks.
func (c *Context) HighWater() uint32 { return c.highWater }

// Used reports bytes currently consumed across all blocks (not the
// high-water mark).
func (c *Context) Used() uint32 {
	var total uint32
	for _, b := range c.blocks {
		total += b.used()
	}
	return total
}

// Cap reports total capacity across all blocks.
func (c *Context) Cap() uint32 {
	var total uint32
	for _, b := range c.blocks {
		total += b.cap()
	}
	return total
}

// SetPeakHistoryHint stamps a piggybacked peak-usage hint on the context.
// Owner.Adopt folds a non-zero hint into the receiving owner's rolling
// average and clears it; Owner.Release uses it as a floor for the trim
// target; reset clears it.
func (c *Context) SetPeakHistoryHint(n uint32) { c.peakHistoryHint = n }

// PeakHistoryHint returns the piggybacked hint, or 0 if none was set.
func (c *Context) PeakHistoryHint() uint32 { return c.peakHistoryHint }

// trimToCapacity drops trailing (most recently grown, and so typically
// largest) blocks until total capacity is at or below target, always
// keeping at least one block. Used when returning a context to its pool
// so a context that once saw an unusually large burst doesn't keep that
// capacity pinned forever (spec §4.5 steps 2-3, Testable Property 6).
func (c *Context) trimToCapacity(target uint32) {
	if target < MinBlockSize {
		target = MinBlockSize
	}
	for len(c.blocks) > 1 && c.Cap() > target {
		c.blocks = c.blocks[:len(c.blocks)-1]
	}
}

// reset rewinds every block to empty and clears accounting, preparing the
// context for reuse. The backing arrays of existing blocks are kept so a
// context that has grown to its owner's typical working set doesn't have
// to regrow it next time.
func (c *Context) reset() {
	for _, b := range c.blocks {
		b.reset(0)
	}
	c.objCount = 0
	c.highWater = 0
	c.peakHistoryHint = 0
	c.snapshotsOut = 0
}
