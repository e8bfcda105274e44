package gomp

// Reserved collective tags. Every collective speaks on a tag in this range,
// offset by the communicator's private tag-space base the same way a user
// tag is — so a Dup'd communicator's Barrier cannot collide with its
// parent's, per spec.md §3.1. User-facing Send/Recv/Isend/Irecv reject any
// tag at or above reservedTagFloor, per spec.md §6.
const (
	reservedTagFloor = 1000

	tagBarrier      = 9999
	tagBcast        = 1000
	tagReduce       = 2000
	tagGather       = 3000
	tagScatter      = 4000
	tagAlltoallBase = 5000
	tagScan         = 6000
	tagGatherv      = 7000
	tagScatterv     = 8000
	tagAllgather    = 10000
	tagExscan       = 11000
	tagAlltoallvBase = 12000
)
