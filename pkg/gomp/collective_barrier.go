package gomp

// Barrier blocks every rank in the communicator until all of them have
// called Barrier, per spec.md §4.7. Implemented as a two-phase fan-in/
// fan-out through rank 0: every non-zero rank signals rank 0, then waits
// for rank 0's release.
func (c *Comm) Barrier() error {
	if c.Size() == 1 {
		return nil
	}
	tag := c.wireTag(tagBarrier)
	rank := c.Rank()
	if rank == 0 {
		for p := 1; p < c.Size(); p++ {
			if _, err := c.rawRecv(nil, 0, Byte, p, tag); err != nil {
				return err
			}
		}
		for p := 1; p < c.Size(); p++ {
			if err := c.rawSend(nil, 0, Byte, p, tag); err != nil {
				return err
			}
		}
		return nil
	}
	if err := c.rawSend(nil, 0, Byte, 0, tag); err != nil {
		return err
	}
	_, err := c.rawRecv(nil, 0, Byte, 0, tag)
	return err
}
