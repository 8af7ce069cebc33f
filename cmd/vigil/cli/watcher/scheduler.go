package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/vigilhq/cli/cmd/vigil/cli/logging"
)

// DefaultInterval is the reconciliation period when none is configured.
const DefaultInterval = 5 * time.Second

// Scheduler drives reconciliation cycles on a fixed period. Cycles run
// strictly sequentially on the caller's goroutine; there is no internal
// parallelism and nothing to lock between cycles.
type Scheduler struct {
	watcher  *Watcher
	interval time.Duration
	cycles   uint64
}

// NewScheduler returns a scheduler running w's cycles every interval.
// Non-positive intervals fall back to DefaultInterval.
func NewScheduler(w *Watcher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{watcher: w, interval: interval}
}

// Cycles returns the number of cycles started so far.
func (s *Scheduler) Cycles() uint64 {
	return s.cycles
}

// Run executes the reconciliation loop until ctx is canceled. The first
// cycle runs immediately. Per-cycle failures are logged and the loop
// continues to the next tick: a transient failure (e.g. a momentary
// filesystem race) must not end the checkpoint history.
//
// Cancellation is cooperative: it is only observed at the wait point
// between cycles. On cancellation one final synchronous cycle flushes any
// pending working-directory changes; its failure is logged, not retried.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logging.WithComponent(ctx, "scheduler")
	logging.Info(ctx, "scheduler started",
		slog.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.cycles++
		cycleCtx := logging.WithCycle(ctx, s.cycles)
		if err := s.watcher.RunCycle(cycleCtx); err != nil {
			logging.Warn(cycleCtx, "reconciliation cycle failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			s.cycles++
			flushCtx := logging.WithCycle(logging.WithComponent(context.WithoutCancel(ctx), "scheduler"), s.cycles)
			if err := s.watcher.RunCycle(flushCtx); err != nil {
				logging.Error(flushCtx, "final flush failed",
					slog.String("error", err.Error()),
				)
			}
			logging.Info(flushCtx, "scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
