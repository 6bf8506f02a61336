// Package memory provides the in-process TTL cache for upstream API responses.
package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pantainos/fmp/pkg/models"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a process-lifetime key/value store with per-entry expiry.
// There is no size bound and no eviction beyond TTL expiry; an expired
// entry is treated as absent and removed the next time Get observes it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    atomic.Int64
	misses  atomic.Int64

	now func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the stored value for key if present and not expired.
// The returned slice is a copy; callers may retain it freely.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a Put may have refreshed the entry in between.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Put stores value under key with the given TTL, unconditionally
// overwriting any existing entry. Last write wins.
func (c *Cache) Put(key string, value []byte, ttl time.Duration) {
	owned := make([]byte, len(value))
	copy(owned, value)

	c.mu.Lock()
	c.entries[key] = entry{value: owned, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Len returns the number of physically stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache performance counters.
func (c *Cache) Stats() models.CacheStats {
	return models.CacheStats{
		Entries: int64(c.Len()),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
