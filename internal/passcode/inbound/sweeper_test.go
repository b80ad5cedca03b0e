package inbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/goroutine"
)

type blockingSweep struct {
	calls   chan struct{}
	release chan struct{}
	removed int
	err     error

	mu    sync.Mutex
	count int
}

func (b *blockingSweep) Sweep(ctx context.Context) (int, error) {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()

	if b.calls != nil {
		b.calls <- struct{}{}
	}
	if b.release != nil {
		select {
		case <-b.release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return b.removed, b.err
}

func (b *blockingSweep) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func newSweeperConfig(t *testing.T, yaml string) config.Config {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestSweeper_SweepNow(t *testing.T) {
	// Arrange
	uc := &blockingSweep{removed: 4}
	s := NewSweeper(uc, newSweeperConfig(t, "modules: {}"))

	// Act
	removed, skipped, err := s.SweepNow(context.Background())

	// Assert
	if err != nil || skipped || removed != 4 {
		t.Fatalf("removed=%d skipped=%v err=%v", removed, skipped, err)
	}
}

func TestSweeper_SweepNowPropagatesError(t *testing.T) {
	// Arrange
	boom := errors.New("store down")
	s := NewSweeper(&blockingSweep{err: boom}, newSweeperConfig(t, "modules: {}"))

	// Act
	_, _, err := s.SweepNow(context.Background())

	// Assert
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestSweeper_SkipsOverlappingRuns(t *testing.T) {
	// Arrange
	uc := &blockingSweep{calls: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewSweeper(uc, newSweeperConfig(t, "modules: {}"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = s.SweepNow(context.Background())
	}()
	<-uc.calls

	// Act
	_, skipped, err := s.SweepNow(context.Background())
	close(uc.release)
	<-done

	// Assert
	if err != nil || !skipped {
		t.Fatalf("skipped=%v err=%v", skipped, err)
	}
	if uc.Count() != 1 {
		t.Fatalf("sweep ran %d times, want 1", uc.Count())
	}

	// the guard is released once the first run returns
	if _, skipped, _ := s.SweepNow(context.Background()); skipped {
		t.Fatal("sweep still marked as running")
	}
}

func TestSweeper_StartRunsOnIntervalUntilCancelled(t *testing.T) {
	// Arrange
	uc := &blockingSweep{calls: make(chan struct{}, 8)}
	s := NewSweeper(uc, newSweeperConfig(t, "modules: {passcode: {sweep_interval_seconds: 1}}"))
	gm := goroutine.NewManager(2)
	ctx, cancel := context.WithCancel(context.Background())

	// Act
	if err := s.Start(ctx, gm); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Assert
	select {
	case <-uc.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper never ran")
	}
	cancel()
	if err := gm.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestSweeper_IntervalDefault(t *testing.T) {
	// Arrange
	s := NewSweeper(&blockingSweep{}, newSweeperConfig(t, "modules: {passcode: {sweep_interval_seconds: 0}}"))

	// Act
	got := s.interval()

	// Assert
	if got != defaultSweepInterval {
		t.Fatalf("interval=%v", got)
	}
}
