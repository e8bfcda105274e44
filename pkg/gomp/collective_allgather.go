package gomp

// Allgather gives every rank the concatenation of every rank's sendcount-
// sized contribution, ordered by rank. Implemented as a Gather to rank 0
// followed by a Bcast of the assembled buffer, per spec.md §4.7.
func (c *Comm) Allgather(sendbuf []byte, sendcount int, dtype Datatype, recvbuf []byte) error {
	if err := c.Gather(sendbuf, sendcount, dtype, recvbuf, sendcount, 0); err != nil {
		return err
	}
	return c.Bcast(recvbuf, sendcount*c.Size(), dtype, 0)
}
