package core

import "sync/atomic"

// tagSpaceStride is the width reserved per communicator. The collective
// tag namespace documented in spec.md §6 spans roughly [1000, 13000), so
// a stride comfortably larger than that keeps every duplicated
// communicator's reserved range disjoint from its parent's.
const tagSpaceStride = 1 << 16

// TagAllocator hands out private tag-space offsets to communicators so a
// duplicated communicator's in-flight collectives cannot collide with its
// parent's, per spec.md §3 ("Duplication produces ... a fresh tag-space
// offset").
type TagAllocator struct {
	next int64
}

// Allocate returns the world communicator's base offset (zero) on the
// very first call and a fresh, disjoint offset on every subsequent call.
func (t *TagAllocator) Allocate() int {
	return int(atomic.AddInt64(&t.next, tagSpaceStride)) - tagSpaceStride
}
