package gomp

import (
	"github.com/jabolina/gomp/pkg/gomp/core"
	"github.com/jabolina/gomp/pkg/gomp/types"
)

// Comm is a communicator: the world process group or one of its
// duplicates. Every communicator shares the single process-wide transport
// mesh; duplication only carves out a private tag-space offset, per
// spec.md §3 and §3.1.
//
// Grounded on the teacher's protocol.go Unity, which is likewise the one
// handle every RPC call hangs off of, generalized here into a small value
// that can be freely duplicated without re-running bootstrap.
type Comm struct {
	mgr     *core.Manager
	tagBase int
}

func newComm(m *core.Manager, tagBase int) *Comm {
	return &Comm{mgr: m, tagBase: tagBase}
}

// manager returns the underlying process manager, for use by pt2pt.go,
// request.go and the collective implementations in this package.
func (c *Comm) manager() *core.Manager { return c.mgr }

// Rank returns this process's rank within the communicator. Rank is a
// mesh-wide identity in this runtime, so it is the same across every
// communicator derived from World.
func (c *Comm) Rank() int { return c.mgr.Rank() }

// Size returns the communicator's process count.
func (c *Comm) Size() int { return c.mgr.Size() }

// Dup creates a new communicator over the same process group with a fresh,
// disjoint tag-space offset, per spec.md §3.1. Dup is itself collective:
// every rank must call it, in the same order relative to other collective
// calls on this communicator, or ranks will allocate different offsets and
// desynchronize. This runtime does not enforce that ordering; callers are
// responsible for it.
func (c *Comm) Dup() *Comm {
	return newComm(c.mgr, c.mgr.AllocateTagBase())
}

// Free releases a duplicated communicator. The underlying transport mesh
// and process manager are shared process-wide and are not torn down here
// — only Finalize does that. Free exists so caller code mirrors the
// create/use/free lifecycle the spec describes; it is otherwise a no-op,
// since the tag-space allocator here never reclaims offsets.
func (c *Comm) Free() {}

// wireTag maps a user-facing tag (or the AnyTag wildcard) onto this
// communicator's private wire tag space.
func (c *Comm) wireTag(tag int) int {
	if tag == types.AnyTag {
		return types.AnyTag
	}
	return c.tagBase + tag
}

// unwireStatus maps a completed status's wire tag back onto the
// user-facing tag space the caller expects to see.
func (c *Comm) unwireStatus(s types.Status) types.Status {
	if s.Tag != types.AnyTag {
		s.Tag -= c.tagBase
	}
	return s
}

func (c *Comm) validateSend(dst, tag int) error {
	if dst < 0 || dst >= c.Size() {
		return types.NewError(types.KindInvalidRank, "destination rank %d out of range [0,%d)", dst, c.Size())
	}
	if tag < 0 {
		return types.NewError(types.KindInvalidTag, "tag %d must be >= 0", tag)
	}
	if tag >= reservedTagFloor {
		return types.NewError(types.KindInvalidTag, "tag %d is in the reserved collective range [%d,...)", tag, reservedTagFloor)
	}
	return nil
}

func (c *Comm) validateRecv(src, tag int) error {
	if src != types.AnySource && (src < 0 || src >= c.Size()) {
		return types.NewError(types.KindInvalidRank, "source rank %d out of range [0,%d)", src, c.Size())
	}
	if tag != types.AnyTag && tag < 0 {
		return types.NewError(types.KindInvalidTag, "tag %d must be >= 0 or ANY_TAG", tag)
	}
	if tag != types.AnyTag && tag >= reservedTagFloor {
		return types.NewError(types.KindInvalidTag, "tag %d is in the reserved collective range [%d,...)", tag, reservedTagFloor)
	}
	return nil
}
