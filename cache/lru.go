package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a thread-safe, in-memory store with a fixed size and a least
// recently used eviction policy.
type LRU[V any] struct {
	entries *lru.Cache[string, V]
}

// NewLRU creates a store holding at most size keys. size must be > 0.
func NewLRU[V any](size int) (*LRU[V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("lru size must be greater than 0, got %d", size)
	}
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}
	return &LRU[V]{entries: entries}, nil
}

// Get retrieves an item and marks it as recently used.
func (c *LRU[V]) Get(_ context.Context, key string) (V, error) {
	value, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, ErrMiss
	}
	return value, nil
}

// Set stores an item, evicting the least recently used one when full.
func (c *LRU[V]) Set(_ context.Context, key string, value V) error {
	c.entries.Add(key, value)
	return nil
}

// Len returns the number of stored keys.
func (c *LRU[V]) Len() int {
	return c.entries.Len()
}

// Close drops every entry.
func (c *LRU[V]) Close() error {
	c.entries.Purge()
	return nil
}

var _ Cache[[]byte] = (*LRU[[]byte])(nil)
