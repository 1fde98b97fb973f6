// Package cache provides memoization for rendered token metadata.
// A token's rendered form is fully determined by its id and the
// extension-set version recorded at mint time, so repeated tokenURI
// queries for hot tokens can be answered without re-rendering.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// RenderCache caches rendered token URIs keyed by (tokenID, version).
type RenderCache struct {
	mu        sync.RWMutex
	cache     map[string]string
	order     []string
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewRenderCache creates a cache with the specified maximum size.
// When the cache is full, the oldest entry is evicted (FIFO).
// Set maxSize to 0 for an unbounded cache.
func NewRenderCache(maxSize int) *RenderCache {
	return &RenderCache{
		cache:   make(map[string]string),
		maxSize: maxSize,
	}
}

// hashKey creates a deterministic key for a (tokenID, version) pair.
func hashKey(tokenID, version uint64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, tokenID)
	h.Write(buf)
	binary.BigEndian.PutUint64(buf, version)
	h.Write(buf)
	return string(h.Sum(nil))
}

// Get retrieves a cached render for the given token and set version.
func (c *RenderCache) Get(tokenID, version uint64) (string, bool) {
	key := hashKey(tokenID, version)

	c.mu.Lock()
	defer c.mu.Unlock()

	if uri, ok := c.cache[key]; ok {
		c.hits++
		return uri, true
	}
	c.misses++
	return "", false
}

// Put stores a rendered URI.
func (c *RenderCache) Put(tokenID, version uint64, uri string) {
	key := hashKey(tokenID, version)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.cache[key]; ok {
		c.cache[key] = uri
		return
	}

	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
		c.evictions++
	}

	c.cache[key] = uri
	c.order = append(c.order, key)
}

// GetOrCompute retrieves from cache or computes and caches the result.
// A failed compute is not cached.
func (c *RenderCache) GetOrCompute(tokenID, version uint64, compute func() (string, error)) (string, error) {
	if uri, ok := c.Get(tokenID, version); ok {
		return uri, nil
	}

	uri, err := compute()
	if err != nil {
		return "", err
	}
	c.Put(tokenID, version, uri)
	return uri, nil
}

// Clear removes all entries from the cache.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]string)
	c.order = nil
}

// Size returns the current number of cached entries.
func (c *RenderCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats returns cache hit, miss, and eviction counters.
func (c *RenderCache) Stats() (hits, misses, evictions int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, c.evictions
}

// HitRate returns the cache hit rate.
func (c *RenderCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}
