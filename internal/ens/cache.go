package ens

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a resolved profile stays fresh.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	profile  *ResolvedProfile
	storedAt time.Time
}

// Cache is a TTL cache for resolved profiles, keyed by lowercased name.
// It is constructed once per process and passed to collaborators; there is
// no package-level cache state.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a Cache with the given TTL. A non-positive TTL falls
// back to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached profile for a name, or nil if absent or stale.
// Stale entries are evicted on access.
func (c *Cache) Get(name string) *ResolvedProfile {
	key := strings.ToLower(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil
	}
	return entry.profile
}

// Set stores a profile under the given name.
func (c *Cache) Set(name string, profile *ResolvedProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[strings.ToLower(name)] = cacheEntry{profile: profile, storedAt: c.now()}
}

// Expire removes a single entry, forcing the next lookup to re-resolve.
func (c *Cache) Expire(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.ToLower(name))
}

// Len returns the number of live entries (stale ones included until touched).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
