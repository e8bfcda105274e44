package gomp

// Alltoall exchanges sendcount-sized chunks between every pair of ranks:
// rank p's chunk destined for rank q lands at rank q's
// recvbuf[p*recvcount:(p+1)*recvcount]. Every off-diagonal exchange is
// posted non-blockingly and then waited on together, so no rank can
// deadlock waiting on a peer that is itself waiting to send, per spec.md
// §4.7. The reserved tag embeds the sender's rank (5000+rank) so a
// receive posted for a specific peer cannot match a different peer's
// message even though every alltoall exchange shares the same logical
// operation.
func (c *Comm) Alltoall(sendbuf []byte, sendcount int, dtype Datatype, recvbuf []byte, recvcount int) error {
	elemSize := dtype.Size()
	rank, size := c.Rank(), c.Size()

	copy(recvbuf[rank*recvcount*elemSize:(rank+1)*recvcount*elemSize], sendbuf[rank*sendcount*elemSize:(rank+1)*sendcount*elemSize])
	if size == 1 {
		return nil
	}

	var reqs []*Request
	for p := 0; p < size; p++ {
		if p == rank {
			continue
		}
		chunk := recvbuf[p*recvcount*elemSize : (p+1)*recvcount*elemSize]
		req, err := c.rawIrecv(chunk, recvcount, dtype, p, c.wireTag(tagAlltoallBase+p))
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}
	for p := 0; p < size; p++ {
		if p == rank {
			continue
		}
		chunk := sendbuf[p*sendcount*elemSize : (p+1)*sendcount*elemSize]
		req, err := c.rawIsend(chunk, sendcount, dtype, p, c.wireTag(tagAlltoallBase+rank))
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}
	_, err := WaitAll(reqs)
	return err
}
