package gomp

// Reduce folds count elements of sendbuf across every rank with op,
// writing the result into recvbuf on root only (every other rank's
// recvbuf is left untouched), per spec.md §4.7 and its resolved Open
// Question: values are folded pairwise as they arrive, not overwritten by
// the last arrival.
func (c *Comm) Reduce(sendbuf, recvbuf []byte, count int, dtype Datatype, op Operation, root int) error {
	kernel, err := lookupKernel(op, dtype)
	if err != nil {
		return err
	}
	width := count * dtype.Size()

	if c.Size() == 1 {
		copy(recvbuf[:width], sendbuf[:width])
		return nil
	}

	if c.Rank() != root {
		return c.rawSend(sendbuf, count, dtype, root, c.wireTag(tagReduce))
	}

	acc := make([]byte, width)
	copy(acc, sendbuf[:width])
	incoming := make([]byte, width)
	for p := 0; p < c.Size(); p++ {
		if p == root {
			continue
		}
		if _, err := c.rawRecv(incoming, count, dtype, p, c.wireTag(tagReduce)); err != nil {
			return err
		}
		kernel(acc, incoming)
	}
	copy(recvbuf[:width], acc)
	return nil
}
