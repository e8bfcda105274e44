package gomp

import (
	"github.com/jabolina/gomp/pkg/gomp/core"
	"github.com/jabolina/gomp/pkg/gomp/types"
)

// Request is the public handle for a non-blocking operation. It wraps the
// core match engine's Request, translating the wire tag and the byte count
// back to the user-facing tag space and element count the call was made
// in, per spec.md §4.5.
type Request struct {
	inner *core.Request
	comm  *Comm
	dtype Datatype
}

func newRequest(inner *core.Request, comm *Comm, dtype Datatype) *Request {
	return &Request{inner: inner, comm: comm, dtype: dtype}
}

func (r *Request) unwire(s types.Status) Status {
	s = r.comm.unwireStatus(s)
	if r.dtype.Size() > 0 {
		s.Count /= r.dtype.Size()
	}
	return s
}

// Wait blocks until the request completes and returns its status.
func (r *Request) Wait() (Status, error) {
	s, err := r.inner.Wait()
	return r.unwire(s), err
}

// Test non-blockingly reports whether the request has completed.
func (r *Request) Test() (bool, Status, error) {
	done, s, err := r.inner.Test()
	if !done {
		return false, Status{}, nil
	}
	return true, r.unwire(s), err
}

// Cancel attempts to cancel a still-pending receive. It only succeeds for
// requests that are still sitting in the posted-receive queue; a request
// that has already matched cannot be cancelled and Cancel returns false,
// per spec.md §4.5's cancellation race.
func (r *Request) Cancel() bool {
	if !r.comm.manager().Engine().Cancel(r.inner) {
		return false
	}
	return r.inner.MarkCancelled()
}

// WaitAll waits for every request in reqs to complete, in order, returning
// every status and the first error encountered (if any).
func WaitAll(reqs []*Request) ([]Status, error) {
	inner := make([]*core.Request, len(reqs))
	for i, r := range reqs {
		inner[i] = r.inner
	}
	rawStatuses, err := core.WaitAll(inner)
	statuses := make([]Status, len(reqs))
	for i, r := range reqs {
		statuses[i] = r.unwire(rawStatuses[i])
	}
	return statuses, err
}

// WaitAny blocks until at least one request in reqs completes, returning
// its index and status.
func WaitAny(reqs []*Request) (int, Status, error) {
	inner := make([]*core.Request, len(reqs))
	for i, r := range reqs {
		inner[i] = r.inner
	}
	idx, s, err := core.WaitAny(inner)
	return idx, reqs[idx].unwire(s), err
}
