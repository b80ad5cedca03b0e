package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/goroutine"
	"go.uber.org/atomic"
)

const defaultSweepInterval = time.Minute

type sweepUsecase interface {
	Sweep(ctx context.Context) (int, error)
}

// Sweeper evicts expired codes on a schedule. At most one sweep runs at a
// time; a tick or manual trigger that finds one in flight is skipped.
type Sweeper struct {
	uc      sweepUsecase
	cfg     config.Config
	running atomic.Bool
}

func NewSweeper(uc sweepUsecase, cfg config.Config) *Sweeper {
	return &Sweeper{uc: uc, cfg: cfg}
}

// Start schedules the sweep loop on gm; it stops when ctx is done.
func (s *Sweeper) Start(ctx context.Context, gm *goroutine.Manager) error {
	return gm.Go(ctx, "passcode-sweeper", s.run)
}

// SweepNow runs one sweep unless another is already running.
func (s *Sweeper) SweepNow(ctx context.Context) (removed int, skipped bool, err error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, true, nil
	}
	defer s.running.Store(false)

	removed, err = s.uc.Sweep(ctx)
	return removed, false, err
}

func (s *Sweeper) interval() time.Duration {
	if d := s.cfg.GetSecond("modules.passcode.sweep_interval_seconds"); d > 0 {
		return d
	}
	return defaultSweepInterval
}

// run re-reads the interval after every sweep so config reloads apply.
func (s *Sweeper) run(ctx context.Context) error {
	slog.InfoContext(ctx, "passcode sweeper started", "interval", s.interval().String())

	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "passcode sweeper stopped")
			return nil
		case <-timer.C:
			removed, skipped, err := s.SweepNow(ctx)
			switch {
			case err != nil && ctx.Err() == nil:
				slog.ErrorContext(ctx, "passcode sweep failed", "error", err)
			case skipped:
				slog.WarnContext(ctx, "passcode sweep skipped, previous run still in progress")
			case removed > 0:
				slog.DebugContext(ctx, "passcode sweep finished", "removed", removed)
			}
			timer.Reset(s.interval())
		}
	}
}
