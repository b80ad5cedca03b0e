package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
)

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Memory keeps records in process memory. Every operation on a key runs
// under that key's mutex; the lock table itself is guarded by mu and entries
// are dropped once no caller holds or waits on them.
type Memory struct {
	ins instrument.Instrumentation

	mu      sync.Mutex
	locks   map[string]*keyLock
	records sync.Map // string -> entity.Record
}

func NewMemory(ins instrument.Instrumentation) *Memory {
	return &Memory{ins: ins, locks: make(map[string]*keyLock)}
}

func (m *Memory) lock(key string) func() {
	m.mu.Lock()
	kl, ok := m.locks[key]
	if !ok {
		kl = &keyLock{}
		m.locks[key] = kl
	}
	kl.refs++
	m.mu.Unlock()

	kl.mu.Lock()

	return func() {
		kl.mu.Unlock()

		m.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}

func (m *Memory) Put(ctx context.Context, rec entity.Record) error {
	_, span := m.ins.Tracer("passcode.outbound.store").Start(ctx, "Memory.Put")
	defer span.End()

	key := rec.Identity.Key()
	unlock := m.lock(key)
	defer unlock()

	m.records.Store(key, rec)
	return nil
}

// Get returns goerror.ErrNotFound when nothing is stored for id.
func (m *Memory) Get(ctx context.Context, id entity.Identity) (*entity.Record, error) {
	_, span := m.ins.Tracer("passcode.outbound.store").Start(ctx, "Memory.Get")
	defer span.End()

	v, ok := m.records.Load(id.Key())
	if !ok {
		return nil, goerror.ErrNotFound
	}
	rec := v.(entity.Record)
	return &rec, nil
}

func (m *Memory) Delete(ctx context.Context, id entity.Identity) error {
	_, span := m.ins.Tracer("passcode.outbound.store").Start(ctx, "Memory.Delete")
	defer span.End()

	key := id.Key()
	unlock := m.lock(key)
	defer unlock()

	m.records.Delete(key)
	return nil
}

func (m *Memory) Entries(ctx context.Context) ([]entity.Record, error) {
	_, span := m.ins.Tracer("passcode.outbound.store").Start(ctx, "Memory.Entries")
	defer span.End()

	var out []entity.Record
	m.records.Range(func(_, v any) bool {
		out = append(out, v.(entity.Record))
		return true
	})
	return out, nil
}

func (m *Memory) Mutate(ctx context.Context, id entity.Identity, fn func(rec *entity.Record) entity.Mutation) error {
	_, span := m.ins.Tracer("passcode.outbound.store").Start(ctx, "Memory.Mutate")
	defer span.End()

	key := id.Key()
	unlock := m.lock(key)
	defer unlock()

	var cur *entity.Record
	if v, ok := m.records.Load(key); ok {
		rec := v.(entity.Record)
		cur = &rec
	}

	switch fn(cur) {
	case entity.MutationSave:
		if cur != nil {
			m.records.Store(key, *cur)
		}
	case entity.MutationDelete:
		m.records.Delete(key)
	case entity.MutationKeep:
	}

	return nil
}
