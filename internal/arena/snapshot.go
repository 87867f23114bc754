package arena

// Snapshot captures a context's bump-allocation position so a caller can
// later roll back every allocation made since, in one cheap operation,
// without tracking individual objects. It is a value type: taking a
// snapshot does not allocate.
type Snapshot struct {
	ctx        *Context
	blockIdx   int
	blockUsed  uint32
	objCount   int32
	generation int
}

// Snapshot records the context's current position, including its
// obj_count. Every Snapshot taken must eventually be consumed by exactly
// one call to Restore or Discard; outstanding snapshots prevent the
// context from being reset or returned to a pool (ErrContextBusy).
func (c *Context) Snapshot() Snapshot {
	c.snapshotsOut++
	idx := len(c.blocks) - 1
	var used uint32
	if idx >= 0 {
		used = c.blocks[idx].offset
	}
	return Snapshot{ctx: c, blockIdx: idx, blockUsed: used, objCount: c.objCount, generation: c.snapshotsOut}
}

// Restore rewinds the context to the position recorded by the snapshot,
// discarding every block allocated afterward, rewinding the last
// surviving block's offset, and resetting obj_count to what it was when
// the snapshot was taken: the context must be indistinguishable from its
// pre-snapshot self by obj_count, total used, and tail identity. Restore
// must be called at most once per snapshot; calling it twice, or out of
// order with a more recent snapshot still outstanding, returns
// ErrStaleSnapshot.
func (s Snapshot) Restore() error {
	c := s.ctx
	if c == nil {
		return nil
	}
	if s.generation != c.snapshotsOut {
		return ErrStaleSnapshot
	}
	if s.blockIdx < 0 {
		c.blocks = c.blocks[:0]
	} else {
		c.blocks = c.blocks[:s.blockIdx+1]
		c.blocks[s.blockIdx].reset(s.blockUsed)
	}
	c.objCount = s.objCount
	c.snapshotsOut--
	c.recordUsage()
	return nil
}

// Discard releases the snapshot slot without rewinding, for callers that
// took a snapshot speculatively (e.g. to retry construction on failure)
// but ended up committing the work instead.
func (s Snapshot) Discard() {
	if s.ctx == nil {
		return
	}
	s.ctx.snapshotsOut--
}
