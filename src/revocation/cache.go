package revocation

import (
	"sync"
	"sync/atomic"
	"time"
)

// CacheEntry holds one cached raw OCSP response or CRL, keyed by its
// source URI.
type CacheEntry struct {
	Data       []byte
	FetchedAt  time.Time
	NextUpdate time.Time
	URI        string
}

func (e *CacheEntry) isFresh(now time.Time) bool {
	return e.NextUpdate.After(now)
}

func (e *CacheEntry) isExpired(now time.Time, grace time.Duration) bool {
	return e.NextUpdate.Before(now.Add(-grace))
}

// CacheMetrics tracks cache hit/miss/eviction counts.
type CacheMetrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Cleanups  int64
}

// CacheConfig bounds a Cache's size and expired-entry sweep interval.
type CacheConfig struct {
	MaxSize         int           // 0 means unlimited
	CleanupInterval time.Duration // <= 0 means DefaultCleanupInterval
	ExpiryGrace     time.Duration // tolerance past NextUpdate before an entry is swept
}

// DefaultCleanupInterval matches the teacher's original CRL cache sweep
// cadence.
const DefaultCleanupInterval = time.Hour

// DefaultExpiryGrace matches the teacher's original grace period before
// sweeping an expired entry.
const DefaultExpiryGrace = time.Hour

// Cache is an LRU cache of raw revocation responses (OCSP or CRL),
// shared by HTTPOcspRepository and HTTPCrlRepository instances that
// want to avoid refetching the same URI on every validation. A
// repository whose Cache field is nil performs no caching.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	order   []string
	config  CacheConfig
	metrics CacheMetrics

	stopCleanup chan struct{}
}

// NewCache creates a Cache and starts its background cleanup
// goroutine. Call Stop when the cache is no longer needed.
func NewCache(config CacheConfig) *Cache {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	if config.ExpiryGrace <= 0 {
		config.ExpiryGrace = DefaultExpiryGrace
	}
	c := &Cache{
		entries:     make(map[string]*CacheEntry),
		config:      config,
		stopCleanup: make(chan struct{}),
	}
	go c.runCleanup()
	return c
}

// Stop terminates the background cleanup goroutine.
func (c *Cache) Stop() {
	close(c.stopCleanup)
}

func (c *Cache) runCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) sweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []string
	for uri, entry := range c.entries {
		if entry.isExpired(now, c.config.ExpiryGrace) {
			expired = append(expired, uri)
		}
	}
	for _, uri := range expired {
		delete(c.entries, uri)
		c.removeFromOrder(uri)
	}
	if len(expired) > 0 {
		atomic.AddInt64(&c.metrics.Cleanups, int64(len(expired)))
	}
}

func (c *Cache) removeFromOrder(uri string) {
	for i, u := range c.order {
		if u == uri {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) touch(uri string) {
	c.removeFromOrder(uri)
	c.order = append(c.order, uri)
}

// Get returns a copy of the cached data for uri if present and still
// within its NextUpdate window.
func (c *Cache) Get(uri string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[uri]
	if !ok || !entry.isFresh(time.Now()) {
		atomic.AddInt64(&c.metrics.Misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.metrics.Hits, 1)
	c.touch(uri)

	out := make([]byte, len(entry.Data))
	copy(out, entry.Data)
	return out, true
}

// Set stores data for uri, evicting the least recently used entry if
// the cache has reached its configured maximum size.
func (c *Cache) Set(uri string, data []byte, nextUpdate time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.config.MaxSize > 0 && len(c.entries) >= c.config.MaxSize {
		if len(c.order) == 0 {
			break
		}
		lru := c.order[0]
		delete(c.entries, lru)
		c.order = c.order[1:]
		atomic.AddInt64(&c.metrics.Evictions, 1)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	c.entries[uri] = &CacheEntry{Data: stored, FetchedAt: time.Now(), NextUpdate: nextUpdate, URI: uri}
	c.touch(uri)
}

// Metrics returns a snapshot of the cache's hit/miss/eviction counters.
func (c *Cache) Metrics() CacheMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}
