package gomp

// Scan computes, on each rank, the inclusive fold of sendbuf across ranks
//0..rank (its own contribution included), per spec.md §4.7's resolved
// Open Question: the operation is actually applied along the chain, not
// just forwarded. Implemented as a linear pipeline: each rank waits for
// its predecessor's running total, folds in its own value, writes the
// result to recvbuf, and forwards it to its successor.
func (c *Comm) Scan(sendbuf, recvbuf []byte, count int, dtype Datatype, op Operation) error {
	kernel, err := lookupKernel(op, dtype)
	if err != nil {
		return err
	}
	width := count * dtype.Size()
	tag := c.wireTag(tagScan)
	rank, size := c.Rank(), c.Size()

	partial := make([]byte, width)
	if rank == 0 {
		copy(partial, sendbuf[:width])
	} else {
		if _, err := c.rawRecv(partial, count, dtype, rank-1, tag); err != nil {
			return err
		}
		kernel(partial, sendbuf[:width])
	}
	copy(recvbuf[:width], partial)
	if rank != size-1 {
		return c.rawSend(partial, count, dtype, rank+1, tag)
	}
	return nil
}

// Exscan computes the same pipeline as Scan but is exclusive: rank r's
// recvbuf holds the fold of ranks 0..r-1, not including its own
// contribution. Rank 0's recvbuf receives the operation's identity
// element, per spec.md §4.7.
func (c *Comm) Exscan(sendbuf, recvbuf []byte, count int, dtype Datatype, op Operation) error {
	kernel, err := lookupKernel(op, dtype)
	if err != nil {
		return err
	}
	width := count * dtype.Size()
	tag := c.wireTag(tagExscan)
	rank, size := c.Rank(), c.Size()

	var exclusive []byte
	if rank == 0 {
		exclusive, err = identity(op, dtype, count)
		if err != nil {
			return err
		}
	} else {
		exclusive = make([]byte, width)
		if _, err := c.rawRecv(exclusive, count, dtype, rank-1, tag); err != nil {
			return err
		}
	}
	copy(recvbuf[:width], exclusive)

	if rank != size-1 {
		inclusive := make([]byte, width)
		copy(inclusive, exclusive)
		kernel(inclusive, sendbuf[:width])
		return c.rawSend(inclusive, count, dtype, rank+1, tag)
	}
	return nil
}
