// Package cache provides a small in-process TTL cache with singleflight
// load deduplication. The scheduling service uses it to memoize calendar
// month payloads between mutations; it is deliberately not a distributed
// cache, since an index rebuild is cheap and correctness comes from
// invalidation on write, not from cross-instance coherence.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options configures cache behavior
type Options struct {
	TTL        time.Duration
	MaxEntries int
}

// Hooks receives cache lifecycle notifications, typically wired to
// Prometheus counters.
type Hooks struct {
	OnHit   func(key string)
	OnMiss  func(key string)
	OnStore func(key string)
	OnEvict func(key string)
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a TTL cache with singleflight-deduplicated loads
type Cache struct {
	mu    sync.RWMutex
	items map[string]*entry
	order []string
	opts  Options
	hooks Hooks
	sf    singleflight.Group
}

// Loader fetches the value for a key on cache miss
type Loader func(ctx context.Context) (interface{}, error)

// New creates a cache with the given options and hooks
func New(opts Options, hooks Hooks) *Cache {
	return &Cache{
		items: make(map[string]*entry),
		order: make([]string, 0, 64),
		opts:  opts,
		hooks: hooks,
	}
}

// Get returns the cached value for key, loading it through loader on a
// miss. Concurrent misses for the same key share a single load.
func (c *Cache) Get(ctx context.Context, key string, loader Loader) (interface{}, error) {
	now := time.Now()
	c.mu.RLock()
	if e, ok := c.items[key]; ok && now.Before(e.expiresAt) {
		val := e.value
		c.mu.RUnlock()
		if c.hooks.OnHit != nil {
			c.hooks.OnHit(key)
		}
		return val, nil
	}
	c.mu.RUnlock()

	if c.hooks.OnMiss != nil {
		c.hooks.OnMiss(key)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		val, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, val)
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Set stores a value under key with the configured TTL
func (c *Cache) Set(key string, val interface{}) {
	e := &entry{value: val, expiresAt: time.Now().Add(c.opts.TTL)}

	c.mu.Lock()
	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = e
	c.evictIfNeeded()
	c.mu.Unlock()

	if c.hooks.OnStore != nil {
		c.hooks.OnStore(key)
	}
}

// Delete removes a single key
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.removeFromOrder(key)
	c.mu.Unlock()
}

// Flush drops every entry. Mutation paths call this rather than tracking
// which months a post touches; the cache is small and rebuilds are cheap.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.items = make(map[string]*entry)
	c.order = c.order[:0]
	c.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// evictIfNeeded enforces MaxEntries with FIFO eviction; caller holds mu.
func (c *Cache) evictIfNeeded() {
	if c.opts.MaxEntries <= 0 || len(c.items) <= c.opts.MaxEntries {
		return
	}
	excess := len(c.items) - c.opts.MaxEntries
	for excess > 0 && len(c.order) > 0 {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.items, victim)
		if c.hooks.OnEvict != nil {
			c.hooks.OnEvict(victim)
		}
		excess--
	}
}
