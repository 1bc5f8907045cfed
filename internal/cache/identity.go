// Package cache provides the identity maps that make sure there is only one live object per id.
package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// Identity is a bounded, least-recently-used map from id to object. Get either returns the cached object or creates
// one, atomically, so concurrent callers asking for the same id always receive the same instance while it remains
// cached.
type Identity[V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, V]
}

func NewIdentity[V any](name string, size int) (*Identity[V], error) {
	log := zap.S().Named("cache").With("cache", name)
	lru, err := simplelru.NewLRU[string, V](size, func(id string, _ V) {
		log.Debugw("evicted", "id", id)
	})
	if err != nil {
		return nil, err
	}
	return &Identity[V]{lru: lru}, nil
}

// Get returns the object for id, calling create to make it if it isn't cached.
func (c *Identity[V]) Get(id string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(id); ok {
		return v
	}
	v := create()
	c.lru.Add(id, v)
	return v
}

// Peek returns the cached object for id without changing its recency.
func (c *Identity[V]) Peek(id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Peek(id)
}

func (c *Identity[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Identity[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
