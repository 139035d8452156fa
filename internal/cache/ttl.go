// waypoint | 2026
// ttl.go

// Package cache provides the short-lived memoization used by read paths
// that would otherwise hit the database once per request. Entries expire
// after a fixed TTL; writers that must not be served stale data call
// Invalidate explicitly.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

type TTL[V any] struct {
	lru *lru.LRU[string, V]
}

func NewTTL[V any](maxEntries int, ttl time.Duration) *TTL[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}

	return &TTL[V]{
		lru: lru.NewLRU[string, V](maxEntries, nil, ttl),
	}
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. Compute errors are not cached.
func (c *TTL[V]) GetOrCompute(
	ctx context.Context,
	key string,
	compute func(ctx context.Context) (V, error),
) (V, error) {
	if value, ok := c.lru.Get(key); ok {
		return value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.lru.Add(key, value)
	return value, nil
}

func (c *TTL[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *TTL[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

func (c *TTL[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

func (c *TTL[V]) Purge() {
	c.lru.Purge()
}

func (c *TTL[V]) Len() int {
	return c.lru.Len()
}
