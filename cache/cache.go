package cache

import "sync"

// Cache stores computed values by key.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Clear()
}

// Noop ignores all cache operations.
type Noop[K comparable, V any] struct{}

// Get implements Cache.
func (Noop[K, V]) Get(K) (V, bool) {
	var zero V
	return zero, false
}

// Set implements Cache.
func (Noop[K, V]) Set(K, V) {}

// Delete implements Cache.
func (Noop[K, V]) Delete(K) {}

// Clear implements Cache.
func (Noop[K, V]) Clear() {}

// Memory is a concurrency-safe in-memory Cache.
type Memory[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewMemory constructs an empty Memory cache.
func NewMemory[K comparable, V any]() *Memory[K, V] {
	return &Memory[K, V]{entries: map[K]V{}}
}

// Get implements Cache.
func (m *Memory[K, V]) Get(key K) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return zero, false
	}
	return v, true
}

// Set implements Cache.
func (m *Memory[K, V]) Set(key K, value V) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[K]V{}
	}
	m.entries[key] = value
}

// Delete implements Cache.
func (m *Memory[K, V]) Delete(key K) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Clear implements Cache.
func (m *Memory[K, V]) Clear() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[K]V{}
}

// Len returns the number of cached entries.
func (m *Memory[K, V]) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var (
	_ Cache[string, int] = Noop[string, int]{}
	_ Cache[string, int] = (*Memory[string, int])(nil)
)
