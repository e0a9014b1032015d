package cache

import (
	"context"
	"sync"
	"time"
)

type (
	Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

	Clock interface {
		Now() time.Time
	}

	entry[V any] struct {
		value     V
		fetchedAt time.Time
	}

	// TTL caches fetched values per key. Failed fetches are not cached.
	TTL[K comparable, V any] struct {
		fetcher Fetcher[K, V]
		ttl     time.Duration
		clock   Clock

		mu      sync.RWMutex
		entries map[K]entry[V]
	}
)

func NewTTL[K comparable, V any](fetcher Fetcher[K, V], ttl time.Duration, clock Clock) *TTL[K, V] {
	return &TTL[K, V]{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[K]entry[V]),
	}
}

func (c *TTL[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.RLock()
	if e, ok := c.entries[key]; ok && c.isValid(e) {
		c.mu.RUnlock()
		return e.value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && c.isValid(e) {
		return e.value, nil
	}

	value, err := c.fetcher(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.entries[key] = entry[V]{value: value, fetchedAt: c.clock.Now()}
	c.evictExpired()

	return value, nil
}

func (c *TTL[K, V]) isValid(e entry[V]) bool {
	return c.clock.Now().Sub(e.fetchedAt) < c.ttl
}

// evictExpired must be called with the write lock held.
func (c *TTL[K, V]) evictExpired() {
	for k, e := range c.entries {
		if !c.isValid(e) {
			delete(c.entries, k)
		}
	}
}
