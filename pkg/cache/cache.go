// Package cache provides the concurrent in-memory cache that holds live guild
// sessions between sweeps.
package cache

import "context"

// Cache is a generic interface for a keyed in-memory cache whose entries can be
// scanned and retired by a background sweeper.
type Cache[K comparable, V any] interface {
	// Fetch retrieves an item from the cache.
	Fetch(ctx context.Context, key K) (V, error)
	// Write adds or replaces an item in the cache.
	Write(ctx context.Context, key K, value V) error
	// Remove deletes an item. Removing an absent key is not an error.
	Remove(ctx context.Context, key K) error
	// Snapshot returns a point-in-time copy of the cached values.
	Snapshot() []V
	// Len reports the number of cached items.
	Len() int
}
