package core

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// bringUpCluster boots n Managers against the same loopback port block,
// bypassing the process-wide singleton via NewTestManager, and returns
// them ordered by rank.
func bringUpCluster(t *testing.T, n int, portBase int) []*Manager {
	t.Helper()
	managers := make([]*Manager, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for rank := 0; rank < n; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			m, err := NewTestManager(Config{
				Size: n, Rank: rank, PortBase: portBase,
				InitTimeout: 5 * time.Second, SendTimeout: 2 * time.Second,
			})
			managers[rank] = m
			errs[rank] = err
		}(rank)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("cluster bring-up failed: %v", err)
		}
	}
	return managers
}

func closeCluster(managers []*Manager) {
	for _, m := range managers {
		if m != nil {
			_ = m.Close()
		}
	}
}

func TestManagerBootstrapFullMesh(t *testing.T) {
	defer goleak.VerifyNone(t)

	managers := bringUpCluster(t, 3, 53000)
	defer closeCluster(managers)

	for rank, m := range managers {
		if m.Rank() != rank || m.Size() != 3 {
			t.Fatalf("manager %d reports rank=%d size=%d", rank, m.Rank(), m.Size())
		}
	}
}

func TestManagerSelfSendUsesLocalDeliveryOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, err := NewTestManager(Config{Size: 1, Rank: 0, PortBase: 53100})
	if err != nil {
		t.Fatalf("NewTestManager: %v", err)
	}
	defer m.Close()

	buf := make([]byte, 8)
	req := NewRequest()
	m.Engine().Post(req, 0, 0, buf)

	if err := m.Send(0, types.NewFrame(0, 0, []byte("loopback"))); err != nil {
		t.Fatalf("Send: %v", err)
	}

	status, err := req.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Count != len("loopback") {
		t.Fatalf("unexpected count: %d", status.Count)
	}
}

func TestManagerCrossRankSend(t *testing.T) {
	defer goleak.VerifyNone(t)

	managers := bringUpCluster(t, 2, 53200)
	defer closeCluster(managers)

	receiver := managers[1]
	buf := make([]byte, 16)
	req := NewRequest()
	receiver.Engine().Post(req, 0, 5, buf)

	if err := managers[0].Send(1, types.NewFrame(0, 5, []byte("ping"))); err != nil {
		t.Fatalf("Send: %v", err)
	}

	status, err := req.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Source != 0 || status.Tag != 5 || string(buf[:status.Count]) != "ping" {
		t.Fatalf("unexpected delivery: status=%+v buf=%q", status, buf[:status.Count])
	}
}

func TestManagerAllocateTagBaseIsDisjoint(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, err := NewTestManager(Config{Size: 1, Rank: 0, PortBase: 53300})
	if err != nil {
		t.Fatalf("NewTestManager: %v", err)
	}
	defer m.Close()

	a := m.AllocateTagBase()
	b := m.AllocateTagBase()
	if a == b {
		t.Fatal("expected two successive allocations to be disjoint")
	}
}
