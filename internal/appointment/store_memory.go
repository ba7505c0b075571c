package appointment

import (
	"context"
	"sync"
)

type MemStore struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

// NewMemStoreWith returns a store already holding snap.
func NewMemStoreWith(snap Snapshot) *MemStore {
	c := snap.Clone()
	return &MemStore{snap: &c}
}

func (m *MemStore) Load(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snap == nil {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return m.snap.Clone(), nil
}

func (m *MemStore) Save(_ context.Context, snap Snapshot) error {
	c := snap.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &c
	return nil
}

var _ Store = (*MemStore)(nil)
