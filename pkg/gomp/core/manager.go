package core

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/jabolina/gomp/pkg/gomp/definition"
	"github.com/jabolina/gomp/pkg/gomp/types"
)

// Manager is the process-wide singleton described in spec.md §3/§4.4. It
// owns the listener, the table of per-peer transports, the match engine,
// and the tag-space allocator. Exactly one instance may exist between
// Init and Finalize.
//
// Grounded on the teacher's pkg/mcast/protocol.go Unity: a bootstrap
// constructor, a guarded-once shutdown (poweroff/contextHolder), and a
// single long-lived struct everything else hangs off of — generalized
// from "one partition's single-group bring-up" to "an N-rank full mesh
// bring-up."
type Manager struct {
	cfg    Config
	logger types.Logger
	stats  *Stats
	engine *Engine
	tags   TagAllocator

	listener net.Listener

	mu        sync.Mutex
	outbound  map[int]*PeerConn
	inbound   map[int]*PeerConn
	finalized bool
}

var (
	singletonMu sync.Mutex
	instance    *Manager
)

// Init brings up the process manager: it reads identity, binds the
// listener, dials every peer while accepting every dial, and returns once
// the full mesh is ready or the init timeout elapses.
func Init(cfg Config) (*Manager, error) {
	singletonMu.Lock()
	if instance != nil {
		singletonMu.Unlock()
		return nil, types.NewError(types.KindAlreadyInitialized, "gomp runtime already initialized")
	}
	// Reserve the slot immediately so a concurrent Init call fails fast
	// instead of racing the bootstrap below.
	instance = &Manager{}
	singletonMu.Unlock()

	m, err := newManager(cfg)
	if err != nil {
		singletonMu.Lock()
		instance = nil
		singletonMu.Unlock()
		return nil, err
	}

	singletonMu.Lock()
	instance = m
	singletonMu.Unlock()
	return m, nil
}

// newManager runs the actual bootstrap with no singleton bookkeeping. It
// is split out from Init so tests can bring up several Managers in one
// process (one per simulated rank) without fighting the process-wide
// singleton every real deployment relies on.
func newManager(cfg Config) (*Manager, error) {
	cfg = cfg.normalize()
	if cfg.Rank < 0 || cfg.Rank >= cfg.Size {
		return nil, types.NewError(types.KindInvalidRank, "rank %d out of range [0,%d)", cfg.Rank, cfg.Size)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = definition.NewDefaultLogger(cfg.Rank)
	}

	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		stats:    &Stats{},
		outbound: make(map[int]*PeerConn),
		inbound:  make(map[int]*PeerConn),
	}
	m.engine = NewEngine(m.stats, logger)
	// The world communicator's tag-space base is zero; every Dup after
	// this allocates a disjoint block.
	_ = m.tags.Allocate()

	if err := m.bootstrap(); err != nil {
		_ = m.shutdown(err)
		return nil, err
	}
	return m, nil
}

// NewTestManager runs the same bootstrap Init does but never touches the
// process-wide singleton. It exists so tests can bring up several
// simulated ranks — each a real Manager bound to its own loopback port —
// within a single test binary. Production code must use Init.
func NewTestManager(cfg Config) (*Manager, error) {
	return newManager(cfg)
}

// Current returns the live Manager, or a NotInitialized error.
func Current() (*Manager, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if instance == nil {
		return nil, types.NewError(types.KindNotInitialized, "gomp runtime not initialized")
	}
	return instance, nil
}

// Finalize closes every transport and the listener, fails every
// still-posted receive, and retires the singleton. It does not wait for
// in-flight sends: a send still writing when its transport closes
// completes with an error. A second call returns a NotInitialized error.
func Finalize() error {
	singletonMu.Lock()
	m := instance
	if m == nil {
		singletonMu.Unlock()
		return types.NewError(types.KindNotInitialized, "finalize called before initialize")
	}
	instance = nil
	singletonMu.Unlock()
	return m.shutdown(types.NewError(types.KindCommunication, "runtime finalized"))
}

// Abort closes transports without draining and terminates the process.
func Abort(code int) {
	singletonMu.Lock()
	m := instance
	instance = nil
	singletonMu.Unlock()
	if m != nil {
		_ = m.shutdown(types.NewError(types.KindCommunication, "runtime aborted"))
	}
	os.Exit(code)
}

// Close shuts this manager down directly, bypassing the process-wide
// singleton. Pairs with NewTestManager; production code uses Finalize.
func (m *Manager) Close() error {
	return m.shutdown(types.NewError(types.KindCommunication, "manager closed"))
}

func (m *Manager) shutdown(pendingErr error) error {
	m.mu.Lock()
	if m.finalized {
		m.mu.Unlock()
		return types.NewError(types.KindFinalizationFailed, "finalize already completed")
	}
	m.finalized = true
	listener := m.listener
	outbound := make([]*PeerConn, 0, len(m.outbound))
	for _, pc := range m.outbound {
		outbound = append(outbound, pc)
	}
	inbound := make([]*PeerConn, 0, len(m.inbound))
	for _, pc := range m.inbound {
		inbound = append(inbound, pc)
	}
	m.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}
	for _, pc := range outbound {
		_ = pc.Close()
	}
	for _, pc := range inbound {
		_ = pc.Close()
	}
	if m.engine != nil {
		m.engine.FailAll(pendingErr)
	}
	return nil
}

// Rank returns this process's rank.
func (m *Manager) Rank() int { return m.cfg.Rank }

// Size returns the job's total rank count.
func (m *Manager) Size() int { return m.cfg.Size }

// Logger returns the configured logger.
func (m *Manager) Logger() types.Logger { return m.logger }

// Engine returns the match engine for this rank.
func (m *Manager) Engine() *Engine { return m.engine }

// AllocateTagBase hands out a fresh, disjoint tag-space offset for a
// duplicated communicator.
func (m *Manager) AllocateTagBase() int { return m.tags.Allocate() }

// Snapshot returns a point-in-time view of the runtime's counters and
// queue depths, for the metrics collector.
func (m *Manager) Snapshot() Snapshot {
	snap := m.stats.snapshot()
	uq, prq := m.engine.Depths()
	snap.UQDepth = uq
	snap.PRQDepth = prq
	return snap
}

// Send hands frame to the destination's peer transport. A send to the
// local rank is delivered directly to the local UQ without touching the
// network, per spec's self-send invariant.
func (m *Manager) Send(dst int, frame *types.Frame) error {
	if dst == m.cfg.Rank {
		m.engine.Deliver(int(frame.Source), int(frame.Tag), frame.Payload())
		return nil
	}
	m.mu.Lock()
	pc, ok := m.outbound[dst]
	m.mu.Unlock()
	if !ok {
		return types.NewError(types.KindCommunication, "no transport to rank %d", dst)
	}
	if err := pc.Send(frame); err != nil {
		m.engine.FailMatching(dst, err)
		return err
	}
	return nil
}

// bootstrap implements the full-mesh bring-up described in spec.md §4.4:
// bind the listener, accept inbound connections from every other rank
// (each one a transport FROM that rank TO this one), and dial every other
// rank (each one a transport FROM this rank TO that one), exchanging a
// tiny rank handshake on every new connection.
func (m *Manager) bootstrap() error {
	addr := fmt.Sprintf("127.0.0.1:%d", m.cfg.PortBase+m.cfg.Rank)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return types.Wrap(types.KindInitializationFailed, err, "failed to listen on %s", addr)
	}
	m.listener = listener

	peerCount := m.cfg.Size - 1
	if peerCount <= 0 {
		// Single-process mode: nothing to connect to.
		go m.acceptLoop()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.InitTimeout)
	defer cancel()

	inboundReady := newBarrierCounter(peerCount)
	outboundReady := newBarrierCounter(peerCount)

	go m.acceptLoop2(inboundReady)

	for p := 0; p < m.cfg.Size; p++ {
		if p == m.cfg.Rank {
			continue
		}
		go m.dialPeer(ctx, p, outboundReady)
	}

	if err := inboundReady.wait(ctx); err != nil {
		return types.NewError(types.KindConnection, "timed out waiting for %d inbound peers to connect", peerCount)
	}
	if err := outboundReady.wait(ctx); err != nil {
		return types.NewError(types.KindConnection, "timed out dialing %d peers", peerCount)
	}
	return nil
}

func (m *Manager) acceptLoop() {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		_ = conn.Close()
	}
}

func (m *Manager) acceptLoop2(ready *barrierCounter) {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		go m.handleAccept(conn, ready)
	}
}

func (m *Manager) handleAccept(conn net.Conn, ready *barrierCounter) {
	rank, err := readHandshake(conn)
	if err != nil {
		_ = conn.Close()
		return
	}
	pc := newPeerConn(conn, rank, m.cfg.SendTimeout, m.logger, m.stats)
	m.mu.Lock()
	m.inbound[rank] = pc
	m.mu.Unlock()
	ready.increment()
	go pc.receiveLoop(m.engine.Deliver, m.onTransportFailed)
}

func (m *Manager) dialPeer(ctx context.Context, rank int, ready *barrierCounter) {
	addr := fmt.Sprintf("127.0.0.1:%d", m.cfg.PortBase+rank)
	backoff := 10 * time.Millisecond
	const maxBackoff = 500 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		if err := writeHandshake(conn, m.cfg.Rank); err != nil {
			_ = conn.Close()
			continue
		}
		pc := newPeerConn(conn, rank, m.cfg.SendTimeout, m.logger, m.stats)
		m.mu.Lock()
		m.outbound[rank] = pc
		m.mu.Unlock()
		ready.increment()
		return
	}
}

func (m *Manager) onTransportFailed(rank int, err error) {
	m.logger.Warnf("transport from rank %d failed: %v", rank, err)
	m.engine.FailMatching(rank, err)
}

func writeHandshake(conn net.Conn, rank int) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(rank))
	_, err := conn.Write(buf)
	return err
}

func readHandshake(conn net.Conn) (int, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return 0, err
	}
	return int(int32(binary.LittleEndian.Uint32(buf))), nil
}

// barrierCounter blocks until `target` independent events have reported
// in, bounded by a context deadline. Used during bootstrap to wait for
// the full mesh without a busy-wait on the hot path — this only runs
// once, at Init.
type barrierCounter struct {
	mu     sync.Mutex
	count  int
	target int
}

func newBarrierCounter(target int) *barrierCounter {
	return &barrierCounter{target: target}
}

func (b *barrierCounter) increment() {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
}

func (b *barrierCounter) reached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count >= b.target
}

func (b *barrierCounter) wait(ctx context.Context) error {
	if b.reached() {
		return nil
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if b.reached() {
				return nil
			}
		}
	}
}
