package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrigger_ReentrancyGuard(t *testing.T) {
	var invocations atomic.Int32
	release := make(chan struct{})

	tk := New(10000002, KindOrders, func(ctx context.Context, regionID int64) error {
		invocations.Add(1)
		<-release
		return nil
	}, nil)

	tk.Trigger()

	// Wait for the run to start.
	deadline := time.Now().Add(time.Second)
	for !tk.Running() {
		if time.Now().After(deadline) {
			t.Fatal("run never started")
		}
		time.Sleep(time.Millisecond)
	}

	// Re-entrant triggers while running must be dropped.
	tk.Trigger()
	tk.Trigger()
	time.Sleep(20 * time.Millisecond)

	if got := invocations.Load(); got != 1 {
		t.Errorf("invocations = %d during in-flight run, want 1", got)
	}

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tk.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestTrigger_IdleAgainAfterRun(t *testing.T) {
	var invocations atomic.Int32

	tk := New(10000002, KindHistory, func(ctx context.Context, regionID int64) error {
		invocations.Add(1)
		return nil
	}, nil)

	tk.Trigger()
	waitIdle(t, tk)

	tk.Trigger()
	waitIdle(t, tk)

	if got := invocations.Load(); got != 2 {
		t.Errorf("invocations = %d, want 2", got)
	}
}

func TestTrigger_FailedRunReturnsToIdle(t *testing.T) {
	var invocations atomic.Int32

	tk := New(10000043, KindOrders, func(ctx context.Context, regionID int64) error {
		invocations.Add(1)
		return errors.New("upstream exploded")
	}, nil)

	tk.Trigger()
	waitIdle(t, tk)

	// A failed run must not wedge the task; the next trigger runs fresh.
	tk.Trigger()
	waitIdle(t, tk)

	if got := invocations.Load(); got != 2 {
		t.Errorf("invocations = %d, want 2", got)
	}
}

func TestStop_CancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	var sawCancel atomic.Bool

	tk := New(10000002, KindOrders, func(ctx context.Context, regionID int64) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	}, nil)

	tk.Trigger()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tk.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if !sawCancel.Load() {
		t.Error("in-flight run was not cancelled")
	}
}

func TestTrigger_AfterStopIsNoop(t *testing.T) {
	var invocations atomic.Int32

	tk := New(10000002, KindOrders, func(ctx context.Context, regionID int64) error {
		invocations.Add(1)
		return nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tk.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	tk.Trigger()
	time.Sleep(20 * time.Millisecond)

	if got := invocations.Load(); got != 0 {
		t.Errorf("invocations = %d after Stop, want 0", got)
	}
}

func waitIdle(t *testing.T, tk *RegionTask) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		// Running flips true before the goroutine runs, so idle here means
		// either "finished" or "not yet started"; give the goroutine a tick.
		time.Sleep(5 * time.Millisecond)
		if !tk.Running() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("task never returned to idle")
		}
	}
}
