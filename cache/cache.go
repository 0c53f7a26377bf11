// Package cache provides response stores keyed by request cache keys.
//
// Three stores are available:
//
//   - Memory: append-only and unbounded, lives as long as the process
//   - LRU: bounded, evicts the least recently used key
//   - Redis: shared between processes, entries expire after a TTL
package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the key has no stored value.
var ErrMiss = errors.New("cache miss")

// Cache is a generic interface for a response store.
type Cache[V any] interface {
	// Get retrieves the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) (V, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value V) error
	// Close releases any resources held by the store.
	Close() error
}
