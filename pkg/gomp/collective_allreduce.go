package gomp

// Allreduce reduces sendbuf into recvbuf on every rank: internally a
// Reduce to rank 0 followed by a Bcast of the result, per spec.md §4.7.
func (c *Comm) Allreduce(sendbuf, recvbuf []byte, count int, dtype Datatype, op Operation) error {
	if err := c.Reduce(sendbuf, recvbuf, count, dtype, op, 0); err != nil {
		return err
	}
	return c.Bcast(recvbuf, count, dtype, 0)
}
