package cache

import (
	"context"
	"sync"
)

// Memory is a thread-safe, append-only, in-memory store. A key, once
// written, keeps its first value for the lifetime of the store.
type Memory[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// NewMemory creates an empty in-memory store.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from the store.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		var zero V
		return zero, ErrMiss
	}
	return value, nil
}

// Set adds an item unless the key is already present.
func (m *Memory[V]) Set(_ context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		m.data[key] = value
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close is a no-op for the in-memory store.
func (m *Memory[V]) Close() error {
	return nil
}

var _ Cache[[]byte] = (*Memory[[]byte])(nil)
