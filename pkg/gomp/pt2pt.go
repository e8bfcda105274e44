package gomp

import (
	"github.com/jabolina/gomp/pkg/gomp/core"
	"github.com/jabolina/gomp/pkg/gomp/types"
)

// Send blocks until count elements of buf, typed dtype, have been handed
// to the transport bound for rank dst tagged tag. Rank and tag are
// validated before any I/O is attempted, per spec.md §4.6; count is not.
func (c *Comm) Send(buf []byte, count int, dtype Datatype, dst, tag int) error {
	req, err := c.Isend(buf, count, dtype, dst, tag)
	if err != nil {
		return err
	}
	_, err = req.Wait()
	return err
}

// Recv blocks until a message matching (src, tag) arrives, copies up to
// count elements into buf, and returns the completed Status. src may be
// AnySource and tag may be AnyTag.
func (c *Comm) Recv(buf []byte, count int, dtype Datatype, src, tag int) (Status, error) {
	req, err := c.Irecv(buf, count, dtype, src, tag)
	if err != nil {
		return Status{}, err
	}
	return req.Wait()
}

// Isend validates synchronously and returns immediately with a Request;
// the network write happens concurrently. Per spec.md §4.6, buf must not
// be modified until the request completes.
func (c *Comm) Isend(buf []byte, count int, dtype Datatype, dst, tag int) (*Request, error) {
	if err := c.validateSend(dst, tag); err != nil {
		return nil, err
	}
	return c.rawIsend(buf, count, dtype, dst, c.wireTag(tag))
}

// Irecv validates synchronously, posts the receive with the match engine,
// and returns immediately with a Request.
func (c *Comm) Irecv(buf []byte, count int, dtype Datatype, src, tag int) (*Request, error) {
	if err := c.validateRecv(src, tag); err != nil {
		return nil, err
	}
	return c.rawIrecv(buf, count, dtype, src, c.wireTag(tag))
}

// rawIsend and rawIrecv are the tag-unrestricted primitives the collective
// algorithms build on: they skip the reserved-range check Send/Recv apply,
// since collectives speak on tags in that very range.

func (c *Comm) rawIsend(buf []byte, count int, dtype Datatype, dst, wireTag int) (*Request, error) {
	payload := buf[:count*dtype.Size()]
	frame := types.NewFrame(int32(c.Rank()), int32(wireTag), payload)
	req := core.NewRequest()
	go func() {
		if err := c.manager().Send(dst, frame); err != nil {
			req.CompleteError(err)
			return
		}
		req.CompleteOK(types.Status{Source: c.Rank(), Tag: wireTag, Count: len(payload)})
	}()
	return newRequest(req, c, dtype), nil
}

func (c *Comm) rawIrecv(buf []byte, count int, dtype Datatype, src, wireTag int) (*Request, error) {
	capBytes := count * dtype.Size()
	req := core.NewRequest()
	c.manager().Engine().Post(req, src, wireTag, buf[:capBytes])
	return newRequest(req, c, dtype), nil
}

func (c *Comm) rawSend(buf []byte, count int, dtype Datatype, dst, wireTag int) error {
	req, err := c.rawIsend(buf, count, dtype, dst, wireTag)
	if err != nil {
		return err
	}
	_, err = req.Wait()
	return err
}

func (c *Comm) rawRecv(buf []byte, count int, dtype Datatype, src, wireTag int) (Status, error) {
	req, err := c.rawIrecv(buf, count, dtype, src, wireTag)
	if err != nil {
		return Status{}, err
	}
	return req.Wait()
}
