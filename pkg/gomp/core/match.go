package core

import (
	"sync"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// postedReceive is a record created when a receive is initiated.
type postedReceive struct {
	request    *Request
	wantSource int
	wantTag    int
	buf        []byte
}

// unexpectedMessage is a record created when a frame arrives for which no
// matching receive has been posted yet.
type unexpectedMessage struct {
	source  int
	tag     int
	payload []byte
}

func matches(wantSource, wantTag, source, tag int) bool {
	if wantSource != types.AnySource && wantSource != source {
		return false
	}
	if wantTag != types.AnyTag && wantTag != tag {
		return false
	}
	return true
}

// Engine is the match engine: it maintains the unexpected queue (UQ) and
// the posted-receive queue (PRQ) for one local rank behind a single
// mutex, and pairs arriving frames with posted receives by (source, tag)
// with wildcard support.
//
// Grounded on the teacher's peer.go rqueue/observers pattern — a queue of
// arrived state consulted under lock, paired with a side-table of
// pending waiters — generalized from UID-only matching (the teacher only
// ever matched a commit notification to the UID that requested it) to
// full wildcard (source, tag) matching, since point-to-point MPI receives
// may use ANY_SOURCE/ANY_TAG.
type Engine struct {
	mu     sync.Mutex
	uq     []unexpectedMessage
	prq    []*postedReceive
	stats  *Stats
	logger types.Logger
}

// NewEngine creates a match engine for one local rank.
func NewEngine(stats *Stats, logger types.Logger) *Engine {
	return &Engine{stats: stats, logger: logger}
}

// Deliver is the arrival path: a frame just arrived (from the network or
// from a local self-send). Under lock, it scans the PRQ in FIFO order for
// the first matching posted receive; if found, it completes that
// receive. Otherwise the frame is appended to the UQ.
func (e *Engine) Deliver(source, tag int, payload []byte) {
	e.mu.Lock()
	for i, pr := range e.prq {
		if !matches(pr.wantSource, pr.wantTag, source, tag) {
			continue
		}
		e.prq = append(e.prq[:i], e.prq[i+1:]...)
		e.mu.Unlock()
		e.complete(pr, source, tag, payload)
		return
	}
	e.uq = append(e.uq, unexpectedMessage{source: source, tag: tag, payload: payload})
	if e.stats != nil {
		e.stats.addQueuedUnexpected()
	}
	e.mu.Unlock()
}

// Post is the post path: a receive was just initiated. Under lock, it
// scans the UQ in FIFO order for the first matching frame; if found, the
// request completes immediately (synchronously, before Post returns).
// Otherwise the receive is appended to the PRQ and will be completed
// later from Deliver.
func (e *Engine) Post(request *Request, wantSource, wantTag int, buf []byte) {
	e.mu.Lock()
	for i, um := range e.uq {
		if !matches(wantSource, wantTag, um.source, um.tag) {
			continue
		}
		e.uq = append(e.uq[:i], e.uq[i+1:]...)
		e.mu.Unlock()
		if e.stats != nil {
			e.stats.addMatchedImmediate()
		}
		e.complete(&postedReceive{request: request, wantSource: wantSource, wantTag: wantTag, buf: buf}, um.source, um.tag, um.payload)
		return
	}
	e.prq = append(e.prq, &postedReceive{request: request, wantSource: wantSource, wantTag: wantTag, buf: buf})
	e.mu.Unlock()
}

// complete copies the payload into the posted receive's buffer (or
// completes with a truncation error if it does not fit) and resolves the
// request.
func (e *Engine) complete(pr *postedReceive, source, tag int, payload []byte) {
	if len(payload) > len(pr.buf) {
		if e.logger != nil {
			e.logger.Debugf("request %s: truncation from rank %d tag %d: buffer %d < payload %d",
				pr.request.UID(), source, tag, len(pr.buf), len(payload))
		}
		pr.request.CompleteError(types.WrapCommunication(types.SubkindTruncation, nil,
			"receive buffer capacity %d smaller than arriving payload %d bytes", len(pr.buf), len(payload)))
		return
	}
	n := copy(pr.buf, payload)
	pr.request.CompleteOK(types.Status{Source: source, Tag: tag, Count: n})
}

// Cancel removes a posted receive from the PRQ if it is still there,
// returning true on success. If the receive is not found (it has already
// been matched and removed by Deliver/Post), cancellation fails and the
// caller must still wait.
func (e *Engine) Cancel(request *Request) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, pr := range e.prq {
		if pr.request == request {
			e.prq = append(e.prq[:i], e.prq[i+1:]...)
			return true
		}
	}
	return false
}

// Probe inspects the UQ for a frame matching (wantSource, wantTag)
// without removing it, returning a status describing it.
func (e *Engine) Probe(wantSource, wantTag int) (types.Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, um := range e.uq {
		if matches(wantSource, wantTag, um.source, um.tag) {
			return types.Status{Source: um.source, Tag: um.tag, Count: len(um.payload)}, true
		}
	}
	return types.Status{}, false
}

// FailAll completes every still-posted receive with err. Used at
// finalize time and when a peer transport fails.
func (e *Engine) FailAll(err error) {
	e.mu.Lock()
	pending := e.prq
	e.prq = nil
	e.mu.Unlock()
	for _, pr := range pending {
		if e.logger != nil {
			e.logger.Warnf("request %s: failed by FailAll: %v", pr.request.UID(), err)
		}
		pr.request.CompleteError(err)
	}
}

// FailMatching completes every still-posted receive whose wantSource is
// the given failed rank — used when a single peer transport fails but the
// rest of the mesh is still healthy. ANY_SOURCE receives stay posted,
// since another rank can still satisfy them.
func (e *Engine) FailMatching(rank int, err error) {
	e.mu.Lock()
	var kept []*postedReceive
	var failed []*postedReceive
	for _, pr := range e.prq {
		if pr.wantSource == rank {
			failed = append(failed, pr)
		} else {
			kept = append(kept, pr)
		}
	}
	e.prq = kept
	e.mu.Unlock()
	for _, pr := range failed {
		if e.logger != nil {
			e.logger.Warnf("request %s: failed by rank %d transport failure: %v", pr.request.UID(), rank, err)
		}
		pr.request.CompleteError(err)
	}
}

// Depths returns the current UQ and PRQ lengths, for metrics.
func (e *Engine) Depths() (uq int, prq int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.uq), len(e.prq)
}
