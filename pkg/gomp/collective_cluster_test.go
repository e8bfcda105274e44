package gomp

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/jabolina/gomp/pkg/gomp/core"
)

var errBadPayload = errors.New("payload mismatch")

// bringUpComms boots n real Managers on loopback, one per simulated rank,
// and wraps each in a world Comm. Mirrors spec.md §8's concrete scenarios,
// which are all stated in terms of an N-rank job.
func bringUpComms(t *testing.T, n int, portBase int) []*Comm {
	t.Helper()
	comms := make([]*Comm, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for rank := 0; rank < n; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			m, err := core.NewTestManager(core.Config{
				Size: n, Rank: rank, PortBase: portBase,
				InitTimeout: 5 * time.Second, SendTimeout: 2 * time.Second,
			})
			errs[rank] = err
			if err == nil {
				comms[rank] = newComm(m, 0)
			}
		}(rank)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("cluster bring-up failed: %v", err)
		}
	}
	return comms
}

func closeComms(comms []*Comm) {
	for _, c := range comms {
		if c != nil {
			_ = c.manager().Close()
		}
	}
}

func runOnEachRank(comms []*Comm, fn func(c *Comm) error) []error {
	errs := make([]error, len(comms))
	var wg sync.WaitGroup
	for i, c := range comms {
		wg.Add(1)
		go func(i int, c *Comm) {
			defer wg.Done()
			errs[i] = fn(c)
		}(i, c)
	}
	wg.Wait()
	return errs
}

func requireNoErrors(t *testing.T, errs []error) {
	t.Helper()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("rank %d: %v", i, err)
		}
	}
}

// Scenario 1: N=4, bcast(root=0) of [42].
func TestScenarioBcast(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 4, 54000)
	defer closeComms(comms)

	errs := runOnEachRank(comms, func(c *Comm) error {
		buf := make([]byte, 4)
		if c.Rank() == 0 {
			binary.LittleEndian.PutUint32(buf, 42)
		}
		return c.Bcast(buf, 1, Int32, 0)
	})
	requireNoErrors(t, errs)
}

// Scenario 2: N=4, reduce(root=0, sum, int32) where rank r sends [r+1];
// root observes [10].
func TestScenarioReduceSum(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 4, 54100)
	defer closeComms(comms)

	results := make([][]byte, len(comms))
	errs := runOnEachRank(comms, func(c *Comm) error {
		send := make([]byte, 4)
		binary.LittleEndian.PutUint32(send, uint32(c.Rank()+1))
		recv := make([]byte, 4)
		err := c.Reduce(send, recv, 1, Int32, Sum, 0)
		results[c.Rank()] = recv
		return err
	})
	requireNoErrors(t, errs)

	got := binary.LittleEndian.Uint32(results[0])
	if got != 10 {
		t.Fatalf("expected root to observe 10, got %d", got)
	}
}

// Scenario 3: N=4, scatter(root=0) of [0,1,2,3] with recvCount=1; rank r's
// buffer is [r].
func TestScenarioScatter(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 4, 54200)
	defer closeComms(comms)

	results := make([][]byte, len(comms))
	errs := runOnEachRank(comms, func(c *Comm) error {
		var send []byte
		if c.Rank() == 0 {
			send = encodeInt32s(0, 1, 2, 3)
		}
		recv := make([]byte, 4)
		err := c.Scatter(send, 1, Int32, recv, 1, 0)
		results[c.Rank()] = recv
		return err
	})
	requireNoErrors(t, errs)

	for r, buf := range results {
		if got := int32(binary.LittleEndian.Uint32(buf)); got != int32(r) {
			t.Fatalf("rank %d: expected %d, got %d", r, r, got)
		}
	}
}

// Scenario 4: N=4, allgather of [rank]; every rank's buffer is [0,1,2,3].
func TestScenarioAllgather(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 4, 54300)
	defer closeComms(comms)

	results := make([][]byte, len(comms))
	errs := runOnEachRank(comms, func(c *Comm) error {
		send := make([]byte, 4)
		binary.LittleEndian.PutUint32(send, uint32(c.Rank()))
		recv := make([]byte, 16)
		err := c.Allgather(send, 1, Int32, recv)
		results[c.Rank()] = recv
		return err
	})
	requireNoErrors(t, errs)

	want := []int32{0, 1, 2, 3}
	for r, buf := range results {
		got := decodeInt32s(buf)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("rank %d: expected %v, got %v", r, want, got)
			}
		}
	}
}

// Scenario 5: N=2, interleaved isend(tag=1) then isend(tag=2) from 0 to 1;
// 1 posts irecv(tag=2) first then irecv(tag=1): both complete correctly
// regardless of arrival order.
func TestScenarioOutOfOrderTagMatching(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 2, 54400)
	defer closeComms(comms)

	sender, receiver := comms[0], comms[1]

	var recvTag2, recvTag1 []byte
	var req2, req1 *Request
	var err error
	recvTag2 = make([]byte, 4)
	recvTag1 = make([]byte, 4)
	req2, err = receiver.Irecv(recvTag2, 1, Int32, 0, 2)
	if err != nil {
		t.Fatalf("Irecv tag=2: %v", err)
	}
	req1, err = receiver.Irecv(recvTag1, 1, Int32, 0, 1)
	if err != nil {
		t.Fatalf("Irecv tag=1: %v", err)
	}

	sendTag1 := encodeInt32s(111)
	sendTag2 := encodeInt32s(222)
	if _, err := sender.Isend(sendTag1, 1, Int32, 1, 1); err != nil {
		t.Fatalf("Isend tag=1: %v", err)
	}
	if _, err := sender.Isend(sendTag2, 1, Int32, 1, 2); err != nil {
		t.Fatalf("Isend tag=2: %v", err)
	}

	if _, err := req2.Wait(); err != nil {
		t.Fatalf("wait tag=2: %v", err)
	}
	if _, err := req1.Wait(); err != nil {
		t.Fatalf("wait tag=1: %v", err)
	}

	if decodeInt32s(recvTag2)[0] != 222 {
		t.Fatalf("tag=2 payload mismatch: %v", decodeInt32s(recvTag2))
	}
	if decodeInt32s(recvTag1)[0] != 111 {
		t.Fatalf("tag=1 payload mismatch: %v", decodeInt32s(recvTag1))
	}
}

// Scenario 6: N=2, recv(src=ANY, tag=ANY) on rank 1 while rank 0 does
// send([100]): completes with status {src=0, tag=0, count=1}.
func TestScenarioAnySourceAnyTag(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 2, 54500)
	defer closeComms(comms)

	receiver := comms[1]
	var status Status
	var recvErr error
	done := make(chan struct{})
	go func() {
		buf := make([]byte, 4)
		status, recvErr = receiver.Recv(buf, 1, Int32, AnySource, AnyTag)
		if recvErr == nil && decodeInt32s(buf)[0] != 100 {
			recvErr = errBadPayload
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond) // let the receive post before the send arrives
	if err := comms[0].Send(encodeInt32s(100), 1, Int32, 1, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}

	<-done
	if recvErr != nil {
		t.Fatalf("Recv: %v", recvErr)
	}
	if status.Source != 0 || status.Tag != 0 || status.Count != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}
