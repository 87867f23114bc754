package arena

import "github.com/kingsalone/sysrepo/internal/bsatn"

// Allocator is the shape bsatn (see internal/bsatn) expects from a buffer
// source for decode-time allocations. *Context satisfies it directly: its
// Alloc and Free methods already have this shape, so no adapter type is
// needed to let bsatn's Reader drop an entire incoming message into one
// Context with one underlying system allocation (SPEC_FULL.md §4.3).
//
// bsatn.Allocator is declared independently over in package bsatn with the
// identical method shape, so bsatn itself never imports arena — only this
// package imports bsatn, purely to spell out AsSerializerAllocator's
// return type, which does not introduce a cycle.
type Allocator interface {
	Alloc(n uint32) ([]byte, error)
	Free([]byte)
}

var _ Allocator = (*Context)(nil)
var _ bsatn.Allocator = (*Context)(nil)

// AsSerializerAllocator exposes ctx as a bsatn.Allocator, the allocator
// shim's named entry point (spec.md §4.3). *Context already satisfies
// bsatn.Allocator structurally; this names that conversion at the call
// site instead of leaning on callers to notice the structural match on
// their own.
func AsSerializerAllocator(ctx *Context) bsatn.Allocator { return ctx }
