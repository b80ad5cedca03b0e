package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
)

type storeUnderTest interface {
	Put(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, id entity.Identity) (*entity.Record, error)
	Delete(ctx context.Context, id entity.Identity) error
	Entries(ctx context.Context) ([]entity.Record, error)
	Mutate(ctx context.Context, id entity.Identity, fn func(rec *entity.Record) entity.Mutation) error
}

// t0 lies in the future so stores that hand expiry to the backend keep the
// record for the duration of the test.
var t0 = time.Now().UTC().Add(time.Hour)

func newRecord(email, tenant, code string) entity.Record {
	return entity.Record{
		Identity:  entity.Identity{Email: email, Tenant: tenant},
		Code:      code,
		IssuedAt:  t0,
		ExpiresAt: t0.Add(5 * time.Minute),
	}
}

// runStoreContract exercises the behaviour every store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) storeUnderTest) {
	t.Run("put then get", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		rec := newRecord("a@x.com", "t1", "123456")

		// Act
		err := s.Put(context.Background(), rec)
		got, getErr := s.Get(context.Background(), rec.Identity)

		// Assert
		if err != nil || getErr != nil {
			t.Fatalf("put=%v get=%v", err, getErr)
		}
		if !got.SameIssue(rec) || !got.ExpiresAt.Equal(rec.ExpiresAt) || got.Attempts != 0 {
			t.Fatalf("got %+v, want %+v", got, rec)
		}
	})

	t.Run("put replaces prior record", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		first := newRecord("a@x.com", "t1", "111111")
		first.Attempts = 2
		second := newRecord("a@x.com", "t1", "222222")

		// Act
		_ = s.Put(context.Background(), first)
		_ = s.Put(context.Background(), second)
		got, err := s.Get(context.Background(), second.Identity)

		// Assert
		if err != nil || got.Code != "222222" || got.Attempts != 0 {
			t.Fatalf("got %+v err=%v", got, err)
		}
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		_ = s.Put(context.Background(), newRecord("a@x.com", "t1", "111111"))
		_ = s.Put(context.Background(), newRecord("a@x.com", "t2", "222222"))

		// Act
		entries, err := s.Entries(context.Background())

		// Assert
		if err != nil || len(entries) != 2 {
			t.Fatalf("entries=%v err=%v", entries, err)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		// Arrange
		s := newStore(t)

		// Act
		_, err := s.Get(context.Background(), entity.Identity{Email: "nobody@x.com", Tenant: "t1"})

		// Assert
		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		rec := newRecord("a@x.com", "t1", "123456")
		_ = s.Put(context.Background(), rec)

		// Act
		err := s.Delete(context.Background(), rec.Identity)
		_, getErr := s.Get(context.Background(), rec.Identity)

		// Assert
		if err != nil || !errors.Is(getErr, goerror.ErrNotFound) {
			t.Fatalf("delete=%v get=%v", err, getErr)
		}
	})

	t.Run("mutate keep save delete", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		rec := newRecord("a@x.com", "t1", "123456")
		_ = s.Put(context.Background(), rec)
		ctx := context.Background()

		// Act
		errSave := s.Mutate(ctx, rec.Identity, func(cur *entity.Record) entity.Mutation {
			cur.Attempts = 2
			return entity.MutationSave
		})
		errKeep := s.Mutate(ctx, rec.Identity, func(cur *entity.Record) entity.Mutation {
			cur.Attempts = 99
			return entity.MutationKeep
		})
		saved, _ := s.Get(ctx, rec.Identity)
		errDel := s.Mutate(ctx, rec.Identity, func(*entity.Record) entity.Mutation { return entity.MutationDelete })
		_, getErr := s.Get(ctx, rec.Identity)

		// Assert
		if errSave != nil || errKeep != nil || errDel != nil {
			t.Fatalf("save=%v keep=%v del=%v", errSave, errKeep, errDel)
		}
		if saved.Attempts != 2 {
			t.Fatalf("attempts=%d, want 2", saved.Attempts)
		}
		if !errors.Is(getErr, goerror.ErrNotFound) {
			t.Fatalf("expected record gone, got %v", getErr)
		}
	})

	t.Run("mutate missing sees nil", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		var sawNil bool

		// Act
		err := s.Mutate(context.Background(), entity.Identity{Email: "a@x.com", Tenant: "t1"}, func(cur *entity.Record) entity.Mutation {
			sawNil = cur == nil
			return entity.MutationSave
		})
		entries, _ := s.Entries(context.Background())

		// Assert
		if err != nil || !sawNil || len(entries) != 0 {
			t.Fatalf("err=%v sawNil=%v entries=%v", err, sawNil, entries)
		}
	})

	t.Run("concurrent mutations are serialized", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		rec := newRecord("a@x.com", "t1", "123456")
		_ = s.Put(context.Background(), rec)
		const workers = 20

		// Act
		var wg sync.WaitGroup
		for range workers {
			wg.Go(func() {
				if err := s.Mutate(context.Background(), rec.Identity, func(cur *entity.Record) entity.Mutation {
					cur.Attempts++
					return entity.MutationSave
				}); err != nil {
					t.Errorf("mutate: %v", err)
				}
			})
		}
		wg.Wait()
		got, err := s.Get(context.Background(), rec.Identity)

		// Assert
		if err != nil || got.Attempts != workers {
			t.Fatalf("attempts=%v err=%v, want %d", got, err, workers)
		}
	})
}
