// Package cache caches provider lazy_load payloads, not query results
// (spec.md's Non-goals: "no cross-query caching of results (only of
// provider payloads)"). A provider payload is keyed by (provider, scope,
// conditions), entirely distinct from the query the caller is running, so
// there is no notion of a schema that grows stale the way a toolset schema
// does in the teacher's registry — a provider's data can change out from
// under the cache at any moment, and the driver already re-fetches on a
// miss. That rules out a refresh-ahead-of-expiry loop: there's no "still
// valid, getting old" state worth proactively refreshing, only "valid until
// TTL" and "gone." MemoryCache is a plain expiring map.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sebitommy123/sa/wire"
)

// Cache stores the raw objects returned by one provider's lazy_load call,
// keyed by a caller-computed key (driver derives it from the scope and its
// conditions).
type Cache interface {
	// Get retrieves cached objects by key. Returns nil, nil if the key is
	// not found or expired.
	Get(ctx context.Context, key string) ([]wire.RawObject, error)
	// Set stores objects with the given TTL.
	Set(ctx context.Context, key string, objects []wire.RawObject, ttl time.Duration) error
	// Delete removes a cached entry.
	Delete(ctx context.Context, key string) error
}

// MemoryCache is an in-memory Cache: a mutex-guarded map of expiring
// entries, nothing more. Entries are only ever evicted lazily, on a Get
// that finds them past expiresAt.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	objects   []wire.RawObject
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

var _ Cache = (*MemoryCache)(nil)

// Get retrieves cached objects by key, evicting the entry in passing if it
// has expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]wire.RawObject, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}

	return entry.objects, nil
}

// Set stores objects with the given TTL.
func (c *MemoryCache) Set(_ context.Context, key string, objects []wire.RawObject, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{objects: objects, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes a cached entry.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Clear removes all cached entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries in the cache, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
