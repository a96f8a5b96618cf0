// Package cache provides a generic in-process TTL cache. The portal uses it
// for storage listings that are expensive to rebuild but tolerate short
// staleness; everything else lives in the session stores.
package cache

import (
	"sync"
	"time"
)

type item[T any] struct {
	value   T
	staleAt time.Time
}

// InMemory is a mutex-guarded map with per-entry expiry. Expired entries are
// invisible to Get immediately and reclaimed by a background sweep.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]item[T]
	ttl   time.Duration
}

// New creates a cache whose entries expire ttl after Set.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]item[T]),
		ttl:   ttl,
	}
	go c.sweep()
	return c
}

// Get returns the cached value, or false when absent or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.staleAt) {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Set stores a value, restarting its expiry clock.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[T]{
		value:   value,
		staleAt: time.Now().Add(c.ttl),
	}
}

// Delete drops a key. Used to invalidate a listing after an upload.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len counts the entries that have not yet expired.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	now := time.Now()
	for _, it := range c.items {
		if now.Before(it.staleAt) {
			n++
		}
	}
	return n
}

// sweep reclaims expired entries once per TTL period, with a floor so a
// sub-second TTL does not spin the ticker.
func (c *InMemory[T]) sweep() {
	period := c.ttl
	if period < time.Second {
		period = time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for k, it := range c.items {
			if now.After(it.staleAt) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
