package task

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the data a task ingests.
type Kind string

// Data kinds.
const (
	KindHistory Kind = "history"
	KindOrders  Kind = "orders"
)

// RunFunc executes one pipeline run for a region.
type RunFunc func(ctx context.Context, regionID int64) error

// RegionTask owns the single in-flight run for one (region, kind) pair.
type RegionTask struct {
	regionID int64
	kind     Kind
	run      RunFunc
	logger   *slog.Logger

	running atomic.Bool
	stopped atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a RegionTask in the idle state.
func New(regionID int64, kind Kind, run RunFunc, logger *slog.Logger) *RegionTask {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RegionTask{
		regionID: regionID,
		kind:     kind,
		run:      run,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// RegionID returns the region this task ingests.
func (t *RegionTask) RegionID() int64 { return t.regionID }

// Kind returns the task's data kind.
func (t *RegionTask) Kind() Kind { return t.kind }

// Running reports whether a run is in flight.
func (t *RegionTask) Running() bool { return t.running.Load() }

// Trigger starts a run unless one is already in flight or the task has been
// stopped. Fire-and-forget: a dropped trigger is logged at debug level, a
// failed run at error level, and neither reaches the caller. The next
// scheduled trigger retries a failed run fresh.
func (t *RegionTask) Trigger() {
	if t.stopped.Load() {
		return
	}
	if !t.running.CompareAndSwap(false, true) {
		t.logger.Debug("trigger dropped, run already in flight",
			"region", t.regionID,
			"kind", t.kind,
		)
		return
	}

	runID := uuid.NewString()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.running.Store(false)

		t.logger.Info("run started",
			"region", t.regionID,
			"kind", t.kind,
			"run_id", runID,
		)
		start := time.Now()

		if err := t.run(t.ctx, t.regionID); err != nil {
			t.logger.Error("run failed",
				"region", t.regionID,
				"kind", t.kind,
				"run_id", runID,
				"duration", time.Since(start),
				"err", err,
			)
			return
		}

		t.logger.Info("run complete",
			"region", t.regionID,
			"kind", t.kind,
			"run_id", runID,
			"duration", time.Since(start),
		)
	}()
}

// Stop cancels any in-flight run and refuses all further triggers; the task
// is terminal after this. Cancellation takes effect at the run's next
// suspension point; committed transactions stay committed. Stop waits for
// the run to unwind or for ctx to expire.
func (t *RegionTask) Stop(ctx context.Context) error {
	t.stopped.Store(true)
	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("task stopped", "region", t.regionID, "kind", t.kind)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
