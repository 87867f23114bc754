// Package arena implements the datastore's memory-context subsystem: a
// bump-allocated, block-based arena ("Context") used to group an object and
// all of its shallow copies into a small number of large allocations,
// together with a per-owner context pool and cross-owner peak-usage
// feedback ("piggybacking") that keeps the pool correctly sized under
// asymmetric producer/consumer workloads.
//
// A Context is single-owner: exactly one goroutine may call any operation
// on a Context, or on any object allocated from it, between handoff points.
// There are no internal locks and no atomics guarding Context state; the
// owner contract is enforced by convention (see Owner) rather than by the
// type system, matching the C original this package ports.
package arena
