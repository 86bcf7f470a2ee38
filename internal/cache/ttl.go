package cache

import (
	"sync"
	"time"
)

// TTLCache is a thread-safe map cache with per-entry expiry. It does not
// bound size; callers keep the key space small (a handful of view keys) and
// rely on the Manager for expiry sweeps.
type TTLCache[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]ttlItem[T]
}

type ttlItem[T any] struct {
	data      T
	expiresAt time.Time
}

func NewTTL[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		ttl:   ttl,
		items: make(map[string]ttlItem[T]),
	}
}

func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return item.data, true
}

func (c *TTLCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlItem[T]{data: data, expiresAt: time.Now().Add(c.ttl)}
}

func (c *TTLCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Purge drops every entry. Mutations call this so reads never serve a stale
// snapshot past one write.
func (c *TTLCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]ttlItem[T])
}

func (c *TTLCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanExpired removes all expired entries
func (c *TTLCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}
