package cache

import (
	"strings"
	"sync"
	"time"
)

// Entry represents a cached value with expiration
type Entry struct {
	Value     interface{}
	ExpiresAt time.Time
}

// Cache is an in-memory map with per-entry TTL. Expired entries are dropped
// lazily on access and by Sweep.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Entry
	now   func() time.Time
}

func New() *Cache {
	return &Cache{items: map[string]*Entry{}, now: time.Now}
}

// NewWithClock lets tests control expiry.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{items: map[string]*Entry{}, now: now}
}

// Set stores a value; a ttl of zero or less never expires.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &Entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	c.items[key] = e
}

// Get retrieves a value from the cache if it hasn't expired
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.items[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}
	if c.expired(entry) {
		c.Delete(key)
		return nil, false
	}
	return entry.Value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Invalidate removes all items matching a prefix
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.items {
		if c.expired(e) {
			delete(c.items, key)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) expired(e *Entry) bool {
	return !e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt)
}
