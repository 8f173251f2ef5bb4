// Package cache holds the one piece of process-wide state in the engine:
// a TTL cache of computed analysis results keyed by user id. Entries are
// written wholesale and never merged, so a single mutex per cache is all
// the coordination required.
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time. Injected so TTL expiry is
// deterministically testable.
type Clock func() time.Time

// Stats tracks cache performance counters
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Sets       int64 `json:"sets"`
	StaleReads int64 `json:"stale_reads"`
}

type entry[V any] struct {
	value     V
	cachedAt  time.Time
	expiresAt time.Time
}

// ResultCache is an in-memory TTL cache for one result type. A zero TTL
// means entries expire immediately; expired entries remain readable
// through GetStale so a failed recompute can fall back to them.
type ResultCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	clock   Clock
	stats   Stats
}

// New creates a cache with the given TTL. A nil clock defaults to
// time.Now.
func New[V any](ttl time.Duration, clock Clock) *ResultCache[V] {
	if clock == nil {
		clock = time.Now
	}
	return &ResultCache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached value for key if it is still fresh
func (c *ResultCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.clock().After(e.expiresAt) {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.stats.Hits++
	return e.value, true
}

// GetStale returns the cached value for key even when expired, reporting
// whether it was past its TTL. Used as the fallback when a recompute
// fails.
func (c *ResultCache[V]) GetStale(key string) (V, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false, false
	}

	stale := c.clock().After(e.expiresAt)
	if stale {
		c.stats.StaleReads++
	} else {
		c.stats.Hits++
	}
	return e.value, true, stale
}

// Set overwrites the entry for key with a fresh TTL
func (c *ResultCache[V]) Set(key string, value V) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		cachedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
	c.stats.Sets++
}

// Invalidate removes the entry for key
func (c *ResultCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries, fresh or expired
func (c *ResultCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache counters
func (c *ResultCache[V]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the fraction of fresh reads among all reads
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses + s.StaleReads
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
