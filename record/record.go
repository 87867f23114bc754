// Package record implements the public arena API surface that concrete
// record constructors and destructors are built on (spec §4.6): an
// embeddable Context back-pointer, paired allocate/inc on construction and
// dec/release on destruction, a shallow-copy helper, and the abort path
// used when deserialization fails partway through populating a fresh
// context.
//
// Concrete record schemas (values, trees, changes, wire messages) are
// explicitly out of scope for this subsystem; this package only provides
// the machinery those schemas are built on top of.
package record

import (
	"context"

	"github.com/kingsalone/sysrepo/internal/arena"
)

// Object is the back-pointer every managed record type embeds (spec §6:
// "Object back-pointer convention"). A zero Object (ctx == nil) means
// "not managed; use system allocator in destructor" — the same
// convention holds whether that's because the caller passed no Owner, or
// because the binary was built with -tags disablearena.
type Object struct {
	ctx *arena.Context
}

// New begins constructing a top-level managed object: acquires a context
// from owner (new or pooled) and registers this object against it. The
// context is sized from owner's rolling peak-usage average (see
// Owner.Acquire); hintSize does not affect its size. If owner is nil, or the binary was built with
// -tags disablearena, the returned Object is unmanaged and every
// AllocField call falls back to a plain make(). A non-nil error means no
// context could be acquired (ctx was canceled, or the allocation itself
// failed); the returned Object is then always unmanaged.
func New(ctx context.Context, owner *arena.Owner, hintSize uint32) (Object, error) {
	if !arena.Enabled || owner == nil {
		return Object{}, nil
	}
	c, err := owner.Acquire(ctx)
	if err != nil {
		return Object{}, err
	}
	c.Inc()
	return Object{ctx: c}, nil
}

// Bind wraps an already-acquired context as an Object without acquiring a
// new one or incrementing its count — used when a caller has a context
// in hand from some other source (e.g. bsatn.Reader's allocator) and
// wants to attach the first object to it. The caller is responsible for
// having called ctx.Inc() itself, or for this being the shim's own
// bookkeeping-free internal buffer rather than a top-level object.
func Bind(ctx *arena.Context) Object { return Object{ctx: ctx} }

// Managed reports whether this object is backed by an arena context.
func (o Object) Managed() bool { return o.ctx != nil }

// Context returns the object's backing context, or nil if unmanaged.
func (o Object) Context() *arena.Context { return o.ctx }

// AllocField allocates n bytes for one of the object's owned fields
// (a string, a nested struct's storage, a sub-slice) from the same
// context the object itself lives in, or from the system allocator if
// the object is unmanaged.
func (o Object) AllocField(n uint32) ([]byte, error) {
	if o.ctx == nil {
		return make([]byte, n), nil
	}
	return o.ctx.Alloc(n)
}

// ShallowCopy returns a new Object referencing the same context as o,
// matching spec §4.6's shallow-copy helper: the copy's own enclosing
// storage is allocated fresh (by the caller, via AllocField on the
// returned Object) but its fields are expected to alias o's existing
// byte slices rather than duplicate them.
//
// bump controls whether the copy's lifetime is tracked independently of
// o's. The spec leaves the exact rule for when a shallow copy must bump
// obj_count an open question, answered in the source only by example;
// this port fixes the convention uniformly (see DESIGN.md): pass true
// when the copy can outlive the value it was copied from in a way that
// value's own destructor won't cover (e.g. the copy is stored somewhere
// independently destroyed later); pass false when the copy is transient
// and scoped by a surrounding Snapshot/Restore bracket instead, which is
// the common case for serializer-conversion shallow copies.
func (o Object) ShallowCopy(bump bool) Object {
	if bump && o.ctx != nil {
		o.ctx.Inc()
	}
	return o
}

// Destroy decrements the backing context's object count and releases the
// context to owner's pool if this was the last live object referencing
// it. Unmanaged objects (ctx == nil) are a no-op: the Go garbage
// collector reclaims their fields the ordinary way, matching the spec's
// backward-compatibility requirement that destructors accept objects
// that were never arena-allocated.
func (o Object) Destroy(owner *arena.Owner) error {
	if o.ctx == nil {
		return nil
	}
	if o.ctx.Dec() == 0 {
		return owner.Release(o.ctx)
	}
	return nil
}

// Abort discards a context mid-construction, for when deserialization
// into a fresh context fails partway through and no object exists yet to
// drive the usual Destroy-triggered release (spec §7, boundary scenario
// S6). The context is freed outright, never pooled.
func Abort(owner *arena.Owner, o Object) {
	if o.ctx == nil || owner == nil {
		return
	}
	owner.Abort(o.ctx)
}
