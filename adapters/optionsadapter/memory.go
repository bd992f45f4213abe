package optionsadapter

import (
	"context"
	"sync"

	"github.com/goliatone/go-options/pkg/state"
)

// MemoryStateStore is an in-process state.Store for fixture layers.
type MemoryStateStore struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]any
	metas     map[string]state.Meta
}

// NewMemoryStateStore constructs an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		snapshots: map[string]map[string]any{},
		metas:     map[string]state.Meta{},
	}
}

// Load implements state.Store.
func (m *MemoryStateStore) Load(_ context.Context, ref state.Ref) (map[string]any, state.Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, state.Meta{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[key]
	if !ok {
		return nil, state.Meta{}, false, nil
	}
	return cloneSnapshot(snapshot), m.metas[key], true, nil
}

// Save implements state.Store.
func (m *MemoryStateStore) Save(_ context.Context, ref state.Ref, snapshot map[string]any, meta state.Meta) (state.Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return state.Meta{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[key] = cloneSnapshot(snapshot)
	m.metas[key] = meta
	return meta, nil
}

// Seed replaces the snapshot stored for ref.
func (m *MemoryStateStore) Seed(ref state.Ref, snapshot map[string]any) error {
	_, err := m.Save(context.Background(), ref, snapshot, state.Meta{})
	return err
}

func cloneSnapshot(snapshot map[string]any) map[string]any {
	if snapshot == nil {
		return nil
	}
	out := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		if child, ok := value.(map[string]any); ok {
			out[key] = cloneSnapshot(child)
			continue
		}
		out[key] = value
	}
	return out
}

var _ state.Store[map[string]any] = (*MemoryStateStore)(nil)
