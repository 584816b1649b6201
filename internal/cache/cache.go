// Package cache holds resolved embed snippets in memory with a time-to-live
// and an upper bound on the number of entries.
package cache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"folio/internal/media"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 1024
)

var (
	// ErrEmptyKey is returned when storing under an empty key.
	ErrEmptyKey = errors.New("cache key cannot be empty")

	// ErrTooLarge is returned when a value exceeds the per-entry size limit.
	ErrTooLarge = errors.New("cache value too large")
)

// Options configures a Cache. Zero values fall back to defaults.
type Options struct {
	TTL           time.Duration
	MaxEntries    int
	MaxEntryBytes int              // 0 means unlimited
	Now           func() time.Time // Clock, overridable in tests
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

type entry struct {
	value   media.CacheEntry
	element *list.Element
}

// Cache is a TTL cache keyed by source URL with least-recently-used eviction.
// It is safe for concurrent use.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	maxBytes   int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // front = most recently used
	stats   Stats
}

// New creates an empty cache.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Cache{
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		maxBytes:   opts.MaxEntryBytes,
		now:        opts.Now,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the entry for key if it is younger than the TTL.
// Stale entries are reported as absent but left for Sweep or the next Set.
func (c *Cache) Get(key string) (media.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.fresh(e.value) {
		c.stats.Misses++
		return media.CacheEntry{}, false
	}

	c.stats.Hits++
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores html under key, replacing any previous entry.
func (c *Cache) Set(key, html string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if c.maxBytes > 0 && len(html) > c.maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(html), c.maxBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value := media.CacheEntry{SourceURL: key, HTML: html, CachedAt: c.now()}

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.order.MoveToFront(e.element)
		return nil
	}

	for len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	e := &entry{value: value}
	e.element = c.order.PushFront(key)
	c.entries[key] = e
	return nil
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.order.Remove(e.element)
		delete(c.entries, key)
	}
}

// Sweep removes all stale entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !c.fresh(e.value) {
			c.order.Remove(e.element)
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps the cache every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// fresh must be called with the lock held.
func (c *Cache) fresh(v media.CacheEntry) bool {
	return c.now().Sub(v.CachedAt) < c.ttl
}

// evictOldest drops the least recently used entry.
// Must be called with the lock held.
func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	key := oldest.Value.(string)
	c.order.Remove(oldest)
	delete(c.entries, key)
	c.stats.Evictions++
}
