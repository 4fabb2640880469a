package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Fetch when a key is not cached.
var ErrNotFound = errors.New("key not found in cache")

// InMemoryCache is a generic, thread-safe, in-memory cache implementation.
// It satisfies the Cache interface.
type InMemoryCache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewInMemoryCache creates a new in-memory cache.
func NewInMemoryCache[K comparable, V any]() *InMemoryCache[K, V] {
	return &InMemoryCache[K, V]{
		data: make(map[K]V),
	}
}

// Fetch retrieves an item from the cache.
func (c *InMemoryCache[K, V]) Fetch(_ context.Context, key K) (V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.data[key]
	if !ok {
		var zero V
		return zero, fmt.Errorf("key '%v': %w", key, ErrNotFound)
	}
	return value, nil
}

// Write adds an item to the cache.
func (c *InMemoryCache[K, V]) Write(_ context.Context, key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

// Remove deletes a key. It is idempotent.
func (c *InMemoryCache[K, V]) Remove(_ context.Context, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Snapshot copies the current values while holding the read lock and releases
// it before returning, so callers can iterate without blocking writers.
func (c *InMemoryCache[K, V]) Snapshot() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	values := make([]V, 0, len(c.data))
	for _, v := range c.data {
		values = append(values, v)
	}
	return values
}

// Len reports the number of cached items.
func (c *InMemoryCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
