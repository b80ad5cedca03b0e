package store

import (
	"context"
	"testing"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
)

func TestMemory(t *testing.T) {
	runStoreContract(t, func(*testing.T) storeUnderTest {
		return NewMemory(instrument.NewNoop())
	})
}

func TestMemory_LockTableShrinks(t *testing.T) {
	// Arrange
	m := NewMemory(instrument.NewNoop())
	rec := newRecord("a@x.com", "t1", "123456")

	// Act
	_ = m.Put(context.Background(), rec)
	_ = m.Mutate(context.Background(), rec.Identity, func(*entity.Record) entity.Mutation { return entity.MutationDelete })

	// Assert
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.locks) != 0 {
		t.Fatalf("lock table holds %d entries after all callers left", len(m.locks))
	}
}

func TestMemory_MutateSeesCopy(t *testing.T) {
	// Arrange
	m := NewMemory(instrument.NewNoop())
	rec := newRecord("a@x.com", "t1", "123456")
	_ = m.Put(context.Background(), rec)
	var leaked *entity.Record

	// Act
	_ = m.Mutate(context.Background(), rec.Identity, func(cur *entity.Record) entity.Mutation {
		leaked = cur
		return entity.MutationKeep
	})
	leaked.Attempts = 42
	got, _ := m.Get(context.Background(), rec.Identity)

	// Assert
	if got.Attempts != 0 {
		t.Fatalf("stored record changed through a kept pointer: attempts=%d", got.Attempts)
	}
}
