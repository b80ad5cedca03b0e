package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
)

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.issue(t, "old@x.com", "t1")
	f.clock.Advance(3 * time.Minute)
	f.issue(t, "new@x.com", "t1")
	f.clock.Advance(3 * time.Minute)

	// Act
	removed, err := f.uc.Sweep(context.Background())

	// Assert
	if err != nil || removed != 1 {
		t.Fatalf("removed=%d err=%v", removed, err)
	}
	if f.record(t, "old@x.com", "t1") != nil {
		t.Fatal("expired record survived the sweep")
	}
	if f.record(t, "new@x.com", "t1") == nil {
		t.Fatal("live record was swept")
	}
}

func TestSweep_Idempotent(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.issue(t, "a@x.com", "t1")
	f.clock.Advance(time.Hour)

	// Act
	first, err1 := f.uc.Sweep(context.Background())
	second, err2 := f.uc.Sweep(context.Background())

	// Assert
	if err1 != nil || err2 != nil || first != 1 || second != 0 {
		t.Fatalf("first=%d/%v second=%d/%v", first, err1, second, err2)
	}
}

// reissueOnMutate re-issues a record between Entries and the sweeper's
// locked re-check.
type reissueOnMutate struct {
	repoStore
	fresh entity.Record
	done  bool
}

func (r *reissueOnMutate) Mutate(ctx context.Context, id entity.Identity, fn func(*entity.Record) entity.Mutation) error {
	if !r.done {
		r.done = true
		if err := r.repoStore.Put(ctx, r.fresh); err != nil {
			return err
		}
	}
	return r.repoStore.Mutate(ctx, id, fn)
}

func TestSweep_SparesRecordReissuedMidSweep(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.issue(t, "a@x.com", "t1")
	f.clock.Advance(10 * time.Minute)
	fresh := entity.Record{
		Identity:  entity.Identity{Email: "a@x.com", Tenant: "t1"},
		Code:      "777777",
		IssuedAt:  f.clock.Now(),
		ExpiresAt: f.clock.Now().Add(5 * time.Minute),
	}
	f.uc.repoStore = &reissueOnMutate{repoStore: f.store, fresh: fresh}

	// Act
	removed, err := f.uc.Sweep(context.Background())

	// Assert
	if err != nil || removed != 0 {
		t.Fatalf("removed=%d err=%v", removed, err)
	}
	if rec := f.record(t, "a@x.com", "t1"); rec == nil || rec.Code != "777777" {
		t.Fatalf("re-issued record lost: %+v", rec)
	}
}

type failingStore struct {
	repoStore
	err error
}

func (s failingStore) Entries(context.Context) ([]entity.Record, error) { return nil, s.err }

func TestSweep_StoreError(t *testing.T) {
	// Arrange
	boom := errors.New("redis: connection pool timeout")
	f := newFixture(t)
	f.uc.repoStore = failingStore{repoStore: f.store, err: boom}

	// Act
	_, err := f.uc.Sweep(context.Background())

	// Assert
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestSweep_StopsOnCancel(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.issue(t, "a@x.com", "t1")
	f.clock.Advance(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	removed, err := f.uc.Sweep(ctx)

	// Assert
	if !errors.Is(err, context.Canceled) || removed != 0 {
		t.Fatalf("removed=%d err=%v", removed, err)
	}
}
