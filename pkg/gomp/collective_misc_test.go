package gomp

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

// allreduce(op) equals reduce(0, op); bcast(0) — checked directly against
// Allreduce's own output rather than re-deriving the round trip, since
// Allreduce is defined as exactly that composition.
func TestAllreduceMatchesEveryRank(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 3, 54600)
	defer closeComms(comms)

	results := make([][]byte, len(comms))
	errs := runOnEachRank(comms, func(c *Comm) error {
		send := encodeInt32s(int32(c.Rank() + 1))
		recv := make([]byte, 4)
		err := c.Allreduce(send, recv, 1, Int32, Sum)
		results[c.Rank()] = recv
		return err
	})
	requireNoErrors(t, errs)

	for r, buf := range results {
		if got := decodeInt32s(buf)[0]; got != 6 {
			t.Fatalf("rank %d: expected sum 6, got %d", r, got)
		}
	}
}

// scatter(root) -> gather(root) is the identity on the root's buffer.
func TestScatterThenGatherRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 3, 54700)
	defer closeComms(comms)

	original := encodeInt32s(7, 8, 9)
	var gathered []byte
	errs := runOnEachRank(comms, func(c *Comm) error {
		var send []byte
		if c.Rank() == 0 {
			send = original
		}
		recv := make([]byte, 4)
		if err := c.Scatter(send, 1, Int32, recv, 1, 0); err != nil {
			return err
		}
		var out []byte
		if c.Rank() == 0 {
			out = make([]byte, 12)
		}
		if err := c.Gather(recv, 1, Int32, out, 1, 0); err != nil {
			return err
		}
		if c.Rank() == 0 {
			gathered = out
		}
		return nil
	})
	requireNoErrors(t, errs)

	want := decodeInt32s(original)
	got := decodeInt32s(gathered)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("round trip mismatch: got %v want %v", got, want)
		}
	}
}

func TestScanAppliesOperationAlongChain(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 4, 54800)
	defer closeComms(comms)

	results := make([][]byte, len(comms))
	errs := runOnEachRank(comms, func(c *Comm) error {
		send := encodeInt32s(int32(c.Rank() + 1))
		recv := make([]byte, 4)
		err := c.Scan(send, recv, 1, Int32, Sum)
		results[c.Rank()] = recv
		return err
	})
	requireNoErrors(t, errs)

	want := []int32{1, 3, 6, 10}
	for r, buf := range results {
		if got := decodeInt32s(buf)[0]; got != want[r] {
			t.Fatalf("rank %d: expected inclusive scan %d, got %d", r, want[r], got)
		}
	}
}

func TestExscanRank0GetsIdentity(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 3, 54900)
	defer closeComms(comms)

	results := make([][]byte, len(comms))
	errs := runOnEachRank(comms, func(c *Comm) error {
		send := encodeInt32s(int32(c.Rank() + 1))
		recv := make([]byte, 4)
		err := c.Exscan(send, recv, 1, Int32, Sum)
		results[c.Rank()] = recv
		return err
	})
	requireNoErrors(t, errs)

	want := []int32{0, 1, 3}
	for r, buf := range results {
		if got := decodeInt32s(buf)[0]; got != want[r] {
			t.Fatalf("rank %d: expected exclusive scan %d, got %d", r, want[r], got)
		}
	}
}

func TestGathervVariableCounts(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 3, 55000)
	defer closeComms(comms)

	counts := []int{1, 2, 3}
	displs := []int{0, 1, 3}
	var gathered []byte
	errs := runOnEachRank(comms, func(c *Comm) error {
		send := make([]byte, counts[c.Rank()]*4)
		for i := 0; i < counts[c.Rank()]; i++ {
			copy(send[i*4:], encodeInt32s(int32(c.Rank()*10+i)))
		}
		var recv []byte
		if c.Rank() == 0 {
			recv = make([]byte, 6*4)
		}
		err := c.Gatherv(send, counts[c.Rank()], Int32, recv, counts, displs, 0)
		if c.Rank() == 0 {
			gathered = recv
		}
		return err
	})
	requireNoErrors(t, errs)

	got := decodeInt32s(gathered)
	want := []int32{0, 10, 11, 20, 21, 22}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gatherv mismatch: got %v want %v", got, want)
		}
	}
}

func TestAlltoallvVariableCounts(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 2, 55100)
	defer closeComms(comms)

	// rank 0 sends 1 element to rank 0 and 2 elements to rank 1.
	// rank 1 sends 2 elements to rank 0 and 1 element to rank 1.
	sendCounts := [][]int{{1, 2}, {2, 1}}
	sendDispls := [][]int{{0, 1}, {0, 2}}
	recvCounts := [][]int{{1, 2}, {2, 1}}
	recvDispls := [][]int{{0, 1}, {0, 2}}

	results := make([][]byte, 2)
	errs := runOnEachRank(comms, func(c *Comm) error {
		r := c.Rank()
		send := encodeInt32s(int32(r*100), int32(r*100+1), int32(r*100+2))
		recv := make([]byte, 12)
		err := c.Alltoallv(send, sendCounts[r], sendDispls[r], Int32, recv, recvCounts[r], recvDispls[r])
		results[r] = recv
		return err
	})
	requireNoErrors(t, errs)

	// rank 0 recv: [own 1 elem from rank0][2 elems from rank1] = [0, 100,101]
	got0 := decodeInt32s(results[0])[:3]
	want0 := []int32{0, 100, 101}
	for i := range want0 {
		if got0[i] != want0[i] {
			t.Fatalf("rank 0 alltoallv mismatch: got %v want %v", got0, want0)
		}
	}
	// rank 1 recv: [2 elems from rank0][1 elem from rank1] = [1,2, 102]
	got1 := decodeInt32s(results[1])[:3]
	want1 := []int32{1, 2, 102}
	for i := range want1 {
		if got1[i] != want1[i] {
			t.Fatalf("rank 1 alltoallv mismatch: got %v want %v", got1, want1)
		}
	}
}

func TestProbeObservesWithoutConsuming(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 2, 55200)
	defer closeComms(comms)

	sender, receiver := comms[0], comms[1]
	if err := sender.Send(encodeInt32s(55), 1, Int32, 1, 3); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var status Status
	var err error
	for time.Now().Before(deadline) {
		status, err = receiver.Probe(0, 3)
		if err == nil {
			break
		}
	}
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if status.Source != 0 || status.Tag != 3 || status.Count != 4 {
		t.Fatalf("unexpected probe status: %+v", status)
	}

	ok, ipStatus, err := receiver.Iprobe(0, 3)
	if err != nil || !ok {
		t.Fatalf("Iprobe should still observe the message: ok=%v err=%v", ok, err)
	}
	if ipStatus.Count != 4 {
		t.Fatalf("unexpected iprobe status: %+v", ipStatus)
	}

	buf := make([]byte, 4)
	if _, err := receiver.Recv(buf, 1, Int32, 0, 3); err != nil {
		t.Fatalf("Recv: %v", err)
	}
}

func TestSizeOneBarrierAndBcastAreNoOps(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 1, 55300)
	defer closeComms(comms)

	c := comms[0]
	if err := c.Barrier(); err != nil {
		t.Fatalf("Barrier: %v", err)
	}
	buf := encodeInt32s(9)
	if err := c.Bcast(buf, 1, Int32, 0); err != nil {
		t.Fatalf("Bcast: %v", err)
	}
	if decodeInt32s(buf)[0] != 9 {
		t.Fatal("size-1 bcast must leave the buffer unchanged")
	}
}

func TestTruncationOnUndersizedRecvBuffer(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 2, 55400)
	defer closeComms(comms)

	sender, receiver := comms[0], comms[1]
	if _, err := sender.Isend(encodeInt32s(1, 2, 3), 3, Int32, 1, 0); err != nil {
		t.Fatalf("Isend: %v", err)
	}
	small := make([]byte, 4)
	_, err := receiver.Recv(small, 1, Int32, 0, 0)
	if err == nil {
		t.Fatal("expected a truncation error for an undersized receive buffer")
	}
}

func TestReservedTagRejectedOnUserSend(t *testing.T) {
	defer goleak.VerifyNone(t)
	comms := bringUpComms(t, 2, 55500)
	defer closeComms(comms)

	err := comms[0].Send(encodeInt32s(1), 1, Int32, 1, tagBarrier)
	if err == nil {
		t.Fatal("expected a reserved tag to be rejected on Send")
	}
}
