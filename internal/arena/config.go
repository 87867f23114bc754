package arena

// Tuning constants for the block allocator and context pool. These mirror
// the fixed constants of the C implementation; nothing here is meant to be
// runtime-configurable, since the original treats them as compile-time
// tuning knobs baked in alongside the allocator itself.
const (
	// MinBlockSize is the smallest block the allocator will carve out of
	// the system allocator, even if the first request is tiny. Avoids a
	// pathological context made of dozens of tiny blocks.
	MinBlockSize = 4 * 1024

	// GrowthNumerator/GrowthDenominator control how much larger each new
	// block is than the last (block_{n+1} >= block_n * 3/2), so a context
	// under sustained growth converges on a handful of large blocks
	// instead of many small ones.
	GrowthNumerator   = 3
	GrowthDenominator = 2

	// MaxSingleAlloc caps a single allocation request; anything larger
	// fails fast with ErrTooLarge rather than growing a block without
	// bound.
	MaxSingleAlloc = 64 * 1024 * 1024

	// DefaultAlignment is used when a caller doesn't need a stricter
	// alignment than natural pointer alignment.
	DefaultAlignment = 8

	// MaxPoolSize bounds how many spare contexts a single Pool will hold
	// onto. Beyond this, returned contexts are released to the system
	// allocator instead of being kept warm.
	MaxPoolSize = 16

	// PeakHistoryLength is the number of recent peak_used samples a
	// peakTracker averages over when computing peak_history_hint.
	PeakHistoryLength = 8

	// MaxTrailingBlocksForAlloc bounds how many of a context's most
	// recently added blocks AllocAligned will examine, tail first, before
	// giving up and growing a new block. A request only reuses room left
	// in one of those trailing blocks; older blocks are never revisited,
	// keeping allocation cost bounded instead of scanning the whole list.
	MaxTrailingBlocksForAlloc = 4

	// PoolTrimSlackMultiplier is the fraction of headroom a pooled context is
	// allowed to carry above a requested size before the pool prefers a
	// fresh context over reusing an oversized one. Expressed as a
	// multiplier: a pooled context is considered a fit if its capacity is
	// <= requested * PoolTrimSlackMultiplier.
	PoolTrimSlackMultiplier = 4
)
