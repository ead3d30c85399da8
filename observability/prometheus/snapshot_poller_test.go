package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/keylane/keylane/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type statsStub struct {
	stats core.ExecutorStats
}

func (s statsStub) Stats() core.ExecutorStats { return s.stats }

func TestSnapshotPoller_CollectsExecutorStats(t *testing.T) {
	// Given a poller watching one stats provider
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddExecutor("primary", statsStub{stats: core.ExecutorStats{
		Workers:     4,
		MaxInFlight: 1000,
		InFlight:    12,
		Lanes:       3,
	}})

	// When the poller runs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	// Then gauges eventually reflect the provider's snapshot
	assertEventually(t, 2*time.Second, func() bool {
		inFlight := testutil.ToFloat64(poller.inFlight.WithLabelValues("primary"))
		lanes := testutil.ToFloat64(poller.lanes.WithLabelValues("primary"))
		return inFlight == 12 && lanes == 3
	})

	if got := testutil.ToFloat64(poller.workers.WithLabelValues("primary")); got != 4 {
		t.Fatalf("workers gauge = %v, want 4", got)
	}
	if got := testutil.ToFloat64(poller.maxInFlight.WithLabelValues("primary")); got != 1000 {
		t.Fatalf("max in-flight gauge = %v, want 1000", got)
	}
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	// Given a poller with no providers attached
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// When Start/Stop are each called twice
	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()

	// Then neither call panics or deadlocks (implicit pass)
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
