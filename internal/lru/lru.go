package lru

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidCapacity is returned by New when the capacity is smaller than one.
var ErrInvalidCapacity = errors.New("lru: capacity must be at least 1")

// Cache is a fixed-capacity least-recently-used cache.
//
// A map indexes keys to arena slots of the recency list, so Get and Put are
// O(1). When a Put of a new key would exceed the capacity, the entry at the
// back of the recency list is evicted first.
//
// This type is not safe for concurrent use.
// The zero value is not valid, instances must be created using New.
type Cache[K comparable, V any] struct {
	capacity  int
	index     map[K]int32
	recency   *recencyList[K, V]
	evictions uint64
}

// New constructs a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Cache[K, V]{
		capacity: capacity,
		index:    make(map[K]int32, min(capacity, 1024)),
		recency:  newRecencyList[K, V](capacity),
	}, nil
}

// Put stores value under key and marks the entry most recently used.
//
// Updating an existing key never evicts. Inserting a new key into a full
// cache evicts exactly one entry, the least recently used, and reports it.
func (c *Cache[K, V]) Put(key K, value V) (evicted bool) {
	if i, ok := c.index[key]; ok {
		c.recency.at(i).value = value
		c.recency.moveToFront(i)
		return false
	}

	if c.recency.len() >= c.capacity {
		c.evictOldest()
		evicted = true
	}

	c.index[key] = c.recency.pushFront(key, value)
	return evicted
}

// Get returns the value stored under key and marks it most recently used.
// The boolean is false when the key is absent.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.recency.moveToFront(i)
	return c.recency.at(i).value, true
}

// Peek is Get without the recency update.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.recency.at(i).value, true
}

// Contains reports whether key is present without touching recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Remove deletes key. It reports whether the key was present.
// Removals are not counted as evictions.
func (c *Cache[K, V]) Remove(key K) bool {
	i, ok := c.index[key]
	if !ok {
		return false
	}
	delete(c.index, key)
	c.recency.remove(i)
	return true
}

// Oldest returns the least recently used entry without promoting it.
func (c *Cache[K, V]) Oldest() (key K, value V, ok bool) {
	i := c.recency.back()
	if i == none {
		return key, value, false
	}
	s := c.recency.at(i)
	return s.key, s.value, true
}

// Len returns the number of entries held.
func (c *Cache[K, V]) Len() int { return c.recency.len() }

// Cap returns the capacity given to New.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// EvictionCount returns how many entries were evicted to make room for new
// keys since the cache was created.
func (c *Cache[K, V]) EvictionCount() uint64 { return c.evictions }

// All yields entries from most to least recently used. Iterating does not
// change recency. The cache must not be modified during iteration.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := c.recency.head; i != none; {
			s := c.recency.at(i)
			if !yield(s.key, s.value) {
				return
			}
			i = s.next
		}
	}
}

// Keys returns the keys in MRU -> LRU order.
func (c *Cache[K, V]) Keys() []K {
	out := make([]K, 0, c.Len())
	for k := range c.All() {
		out = append(out, k)
	}
	return out
}

// Purge removes every entry. Capacity and the eviction count are kept.
func (c *Cache[K, V]) Purge() {
	clear(c.index)
	c.recency.reset()
}

func (c *Cache[K, V]) evictOldest() {
	i := c.recency.back()
	if i == none {
		return
	}
	delete(c.index, c.recency.at(i).key)
	c.recency.remove(i)
	c.evictions++
}
