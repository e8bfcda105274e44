package core

import (
	"reflect"
	"sync"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// State is the lifecycle stage of a Request. Transitions into a terminal
// state happen at most once, per spec.
type State uint8

const (
	StatePending State = iota
	StateCompletedOK
	StateCompletedError
	StateCancelled
)

// Request is the handle backing every non-blocking operation (and every
// blocking operation, which is implemented in terms of a Request it waits
// on internally). It owns no buffer: the caller keeps the user buffer
// valid until completion, per spec's buffer-lifetime contract.
//
// Grounded on the teacher's peer.go observer{uid, notify chan
// types.Response} completion idiom, generalized into a persistent struct
// since MPI callers retain a request value and may Test it repeatedly,
// unlike the teacher's fire-once notification channel.
type Request struct {
	mu     sync.Mutex
	state  State
	status types.Status
	err    error
	done   chan struct{}
	uid    string
}

// NewRequest creates a pending request, tagged with a short unique id for
// log correlation — the same role the teacher's observer{uid} played,
// carried over from a fire-once notification channel to a persistent,
// repeatedly-testable request.
func NewRequest() *Request {
	return &Request{done: make(chan struct{}), uid: GenerateUID()}
}

// UID returns the request's correlation id.
func (r *Request) UID() string {
	return r.uid
}

// CompleteOK transitions the request to completed-ok. Returns false if the
// request was already terminal.
func (r *Request) CompleteOK(status types.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePending {
		return false
	}
	r.state = StateCompletedOK
	r.status = status
	close(r.done)
	return true
}

// CompleteError transitions the request to completed-error. Returns false
// if the request was already terminal.
func (r *Request) CompleteError(err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePending {
		return false
	}
	r.state = StateCompletedError
	r.err = err
	close(r.done)
	return true
}

// MarkCancelled transitions a still-pending request to cancelled. Callers
// must only invoke this after successfully removing the matching posted
// receive from the match engine's PRQ — if the engine reports the
// receive was already matched, cancellation must not be applied here and
// the caller has to wait instead.
func (r *Request) MarkCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePending {
		return false
	}
	r.state = StateCancelled
	close(r.done)
	return true
}

// State returns the request's current lifecycle state.
func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until the request reaches a terminal state and returns its
// outcome.
func (r *Request) Wait() (types.Status, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.err
}

// Test non-blockingly reports whether the request has reached a terminal
// state, and if so, its outcome.
func (r *Request) Test() (done bool, status types.Status, err error) {
	select {
	case <-r.done:
	default:
		return false, types.Status{}, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return true, r.status, r.err
}

// WaitAll waits for every request to reach a terminal state, in order,
// and returns every status. If any request completed with an error, the
// first such error is returned after every request has been waited on —
// matching the spec's "wait for the remaining requests to reach terminal
// state then return the aggregated outcome with the first error
// reported."
func WaitAll(requests []*Request) ([]types.Status, error) {
	statuses := make([]types.Status, len(requests))
	var firstErr error
	for i, r := range requests {
		status, err := r.Wait()
		statuses[i] = status
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return statuses, firstErr
}

// WaitAny blocks until at least one request in the slice reaches a
// terminal state, and returns its index and outcome.
func WaitAny(requests []*Request) (int, types.Status, error) {
	cases := make([]reflect.SelectCase, len(requests))
	for i, r := range requests {
		cases[i] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(r.done)}
	}
	chosen, _, _ := reflect.Select(cases)
	status, err := requests[chosen].Wait()
	return chosen, status, err
}
