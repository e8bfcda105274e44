package core

import "sync/atomic"

// Stats holds process-wide counters consumed by the prometheus collector
// in pkg/gomp/definition. All fields are updated with atomic operations
// since they are written from every peer transport's goroutine as well as
// application goroutines.
type Stats struct {
	framesSent        int64
	framesReceived    int64
	bytesSent         int64
	bytesReceived     int64
	matchedImmediate  int64
	queuedUnexpected  int64
	failedTransports  int64
}

func (s *Stats) addFrameSent(bytes int)       { atomic.AddInt64(&s.framesSent, 1); atomic.AddInt64(&s.bytesSent, int64(bytes)) }
func (s *Stats) addFrameReceived(bytes int)   { atomic.AddInt64(&s.framesReceived, 1); atomic.AddInt64(&s.bytesReceived, int64(bytes)) }
func (s *Stats) addMatchedImmediate()         { atomic.AddInt64(&s.matchedImmediate, 1) }
func (s *Stats) addQueuedUnexpected()         { atomic.AddInt64(&s.queuedUnexpected, 1) }
func (s *Stats) addFailedTransport()          { atomic.AddInt64(&s.failedTransports, 1) }

// Snapshot is a point-in-time copy of Stats plus the match engine's
// current queue depths.
type Snapshot struct {
	FramesSent       int64
	FramesReceived   int64
	BytesSent        int64
	BytesReceived    int64
	MatchedImmediate int64
	QueuedUnexpected int64
	FailedTransports int64
	UQDepth          int
	PRQDepth         int
}

func (s *Stats) snapshot() Snapshot {
	return Snapshot{
		FramesSent:       atomic.LoadInt64(&s.framesSent),
		FramesReceived:   atomic.LoadInt64(&s.framesReceived),
		BytesSent:        atomic.LoadInt64(&s.bytesSent),
		BytesReceived:    atomic.LoadInt64(&s.bytesReceived),
		MatchedImmediate: atomic.LoadInt64(&s.matchedImmediate),
		QueuedUnexpected: atomic.LoadInt64(&s.queuedUnexpected),
		FailedTransports: atomic.LoadInt64(&s.failedTransports),
	}
}
