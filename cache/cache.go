// Package cache provides a size- and time-bounded cache for API
// responses.
//
// The census API serves mostly static game data; caching look-ups
// avoids re-requesting data that rarely changes. Entries expire after
// a fixed time-to-live, and once the cache is full the least recently
// used entry is evicted first.
package cache

import (
	"container/list"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TLRU is a time-aware least-recently-used cache.
//
// Expiry is handled by the underlying TTL store; this type adds the
// recency ordering used for size-based eviction, plus hit and miss
// counters. Safe for concurrent use.
type TLRU[V any] struct {
	store *gocache.Cache

	mu     sync.Mutex
	order  *list.List // front is most recently used
	index  map[string]*list.Element
	size   int
	hits   int64
	misses int64
}

// New creates a TLRU cache holding up to size entries for at most ttl
// each. A non-positive size disables the size bound.
func New[V any](size int, ttl time.Duration) *TLRU[V] {
	return &TLRU[V]{
		store: gocache.New(ttl, 2*ttl),
		order: list.New(),
		index: make(map[string]*list.Element),
		size:  size,
	}
}

// Add inserts or refreshes an entry, evicting the least recently used
// entry if the cache is full.
func (c *TLRU[V]) Add(key string, value V) {
	c.store.Set(key, value, gocache.DefaultExpiration)
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[key]; ok {
		c.order.MoveToFront(elem)
		return
	}
	c.index[key] = c.order.PushFront(key)
	for c.size > 0 && c.order.Len() > c.size {
		c.evictOldest()
	}
}

// Get retrieves an entry, refreshing its recency. The second return
// value reports whether a live entry was found.
func (c *TLRU[V]) Get(key string) (V, bool) {
	raw, ok := c.store.Get(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.misses++
		// Drop the stale recency entry of an expired item.
		if elem, tracked := c.index[key]; tracked {
			c.order.Remove(elem)
			delete(c.index, key)
		}
		var zero V
		return zero, false
	}
	c.hits++
	if elem, tracked := c.index[key]; tracked {
		c.order.MoveToFront(elem)
	}
	return raw.(V), true
}

// Remove deletes an entry, reporting whether it existed.
func (c *TLRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.index[key]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.index, key)
	c.store.Delete(key)
	return true
}

// Clear empties the cache. The hit and miss counters are kept.
func (c *TLRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
	c.order.Init()
	c.index = make(map[string]*list.Element)
}

// Len returns the number of tracked entries, including any that have
// expired but not yet been evicted.
func (c *TLRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the number of cache hits and misses recorded so far.
func (c *TLRU[V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// evictOldest removes the least recently used entry. Callers must
// hold the mutex.
func (c *TLRU[V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	key := oldest.Value.(string)
	c.order.Remove(oldest)
	delete(c.index, key)
	c.store.Delete(key)
}
