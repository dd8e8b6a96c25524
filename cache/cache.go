// Package cache provides in-process memoization of pipeline results for a
// time-to-live. Entries are ephemeral: nothing survives a restart.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Cache memoizes one value per key. Expiry is lazy — a stale entry is
// replaced the next time its key is requested, never swept in the
// background. Concurrent misses for the same key share a single
// computation.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group

	now func() time.Time // overridable in tests
}

func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached value for key when one exists and is
// younger than ttl; otherwise it invokes compute, stores the result, and
// returns it. A compute error is returned as-is and nothing is stored, so
// the next request recomputes.
func (c *Cache[V]) GetOrCompute(key string, ttl time.Duration, compute func() (V, error)) (V, error) {
	if value, ok := c.lookup(key, ttl); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have finished the computation while
		// this one was waiting to enter the group.
		if value, ok := c.lookup(key, ttl); ok {
			return value, nil
		}

		value, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry[V]{value: value, createdAt: c.now()}
		c.mu.Unlock()

		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Invalidate drops the entry for key, if any
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of entries currently held, stale ones included
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key string, ttl time.Duration) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.createdAt) >= ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}
