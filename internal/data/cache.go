package data

import (
	"context"
	"sync"
	"time"

	"energy-planner/internal/scenario"
)

// DefaultResultTTL is how long finished runs stay retrievable.
const DefaultResultTTL = time.Hour

// CacheEntry is a finished run held in memory.
type CacheEntry struct {
	Outcome   *scenario.Outcome
	ExpiresAt time.Time
}

// ResultCache keeps finished runs by result id so their results and hourly
// series can be fetched after the request that produced them.
// A nil *ResultCache stores nothing.
type ResultCache struct {
	mu       sync.RWMutex
	store    map[string]*CacheEntry
	ttl      time.Duration
	now      func() time.Time
	onChange func(size int)
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// OnChange registers a callback that receives the entry count after every
// change.
func (c *ResultCache) OnChange(fn func(size int)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Get retrieves a run if present and not expired.
func (c *ResultCache) Get(id string) (*scenario.Outcome, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Outcome, true
}

// Set stores a run under its result id.
func (c *ResultCache) Set(o *scenario.Outcome) {
	if c == nil || o == nil || o.Result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[o.Result.ID] = &CacheEntry{
		Outcome:   o,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.changed()
}

func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
	c.changed()
}

// Evict removes expired entries and returns how many were dropped.
func (c *ResultCache) Evict() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
			n++
		}
	}
	if n > 0 {
		c.changed()
	}
	return n
}

// Run evicts expired entries every interval until ctx is done.
func (c *ResultCache) Run(ctx context.Context, interval time.Duration) {
	if c == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Evict()
		}
	}
}

// changed must be called with mu held.
func (c *ResultCache) changed() {
	if c.onChange != nil {
		c.onChange(len(c.store))
	}
}
