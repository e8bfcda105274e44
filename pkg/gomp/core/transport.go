package core

import (
	"net"
	"sync"
	"time"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// PeerConn owns one connected TCP socket to a single remote rank. The
// send path is at-most-one-writer: concurrent callers are serialized
// through mu so frames are never interleaved on the wire. A send
// completes once the bytes have been handed to the kernel; there is no
// end-to-end acknowledgement beyond TCP's own.
//
// Grounded on the teacher's core/transport.go Transport interface shape
// (Broadcast/Unicast/Listen/Close backed by a single connection) and the
// pack's raft TCPTransport.Send (mutex around connection use, write
// deadline, immediate failure on error), generalized from relt's
// group-multicast primitive to a point-to-point socket.
type PeerConn struct {
	conn        net.Conn
	rank        int
	sendTimeout time.Duration
	logger      types.Logger
	stats       *Stats

	mu     sync.Mutex
	failed bool

	closeOnce sync.Once
}

// newPeerConn wraps an already-connected socket to the given remote rank.
func newPeerConn(conn net.Conn, rank int, sendTimeout time.Duration, logger types.Logger, stats *Stats) *PeerConn {
	return &PeerConn{conn: conn, rank: rank, sendTimeout: sendTimeout, logger: logger, stats: stats}
}

// Send serializes frame onto the wire. Errors transition the connection
// to failed and close it; subsequent sends fail immediately.
func (p *PeerConn) Send(frame *types.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed {
		return types.WrapCommunication(types.SubkindTransportFailure, nil, "transport to rank %d is failed", p.rank)
	}
	if p.sendTimeout > 0 {
		_ = p.conn.SetWriteDeadline(time.Now().Add(p.sendTimeout))
	}
	n, err := frame.WriteTo(p.conn)
	if err != nil {
		p.markFailedLocked()
		return types.WrapCommunication(types.SubkindTransportFailure, err, "write to rank %d failed", p.rank)
	}
	if p.stats != nil {
		p.stats.addFrameSent(int(n) - types.HeaderSize)
	}
	return nil
}

func (p *PeerConn) markFailedLocked() {
	if p.failed {
		return
	}
	p.failed = true
	if p.stats != nil {
		p.stats.addFailedTransport()
	}
	_ = p.conn.Close()
}

// Failed reports whether this connection has transitioned to the failed
// state.
func (p *PeerConn) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// receiveLoop reads frames in order from the socket and hands each to
// deliver. It runs concurrently with the application and with Send. The
// loop exits, marking the connection failed, on any read error
// (including a clean close).
func (p *PeerConn) receiveLoop(deliver func(source, tag int, payload []byte), onFail func(rank int, err error)) {
	for {
		frame, err := types.ReadFrame(p.conn)
		if err != nil {
			p.mu.Lock()
			p.markFailedLocked()
			p.mu.Unlock()
			if onFail != nil {
				onFail(p.rank, types.WrapCommunication(types.SubkindTransportFailure, err, "receive from rank %d failed", p.rank))
			}
			return
		}
		if p.stats != nil {
			p.stats.addFrameReceived(int(frame.Length))
		}
		deliver(int(frame.Source), int(frame.Tag), frame.Payload())
	}
}

// Close closes the underlying socket. Idempotent.
func (p *PeerConn) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.failed = true
		err = p.conn.Close()
		p.mu.Unlock()
	})
	return err
}
