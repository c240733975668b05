package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lrucache/internal/lru"
)

// Config controls cache capacity and maintenance behavior.
//
//   - MaxEntries must be at least 1
//   - CleanupInterval <= 0 disables background cleanup (lazy expiration still works)
//   - Logger defaults to a no-op logger
//   - Now defaults to time.Now
type Config struct {
	MaxEntries      int
	CleanupInterval time.Duration
	Logger          *zerolog.Logger
	Now             func() time.Time
}

// Cache is a concurrency-safe in-memory key–value cache with LRU eviction and
// optional per-entry TTL.
//
// A single mutex guards the whole lru.Cache, so a lookup and its recency
// promotion, or an insert and the eviction it triggers, happen as one step.
//
// Ownership model:
// Cache owns its internal goroutines. Call Close to stop them.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, item]

	hits        uint64
	misses      uint64
	expirations uint64

	log zerolog.Logger
	now func() time.Time

	// Goroutine ownership.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cleanupEvery time.Duration
	closed       bool
}

// item is the value kept in the LRU.
//
// hasExpiry=false means "never expires".
type item struct {
	value     []byte
	expiresAt time.Time
	hasExpiry bool
}

func (it item) expired(now time.Time) bool {
	return it.hasExpiry && !it.expiresAt.After(now)
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Len         int    `json:"len"`
	Capacity    int    `json:"capacity"`
}

var ErrClosed = errors.New("cache is closed")

// New constructs a cache and starts background maintenance (if enabled).
func New(cfg Config) (*Cache, error) {
	store, err := lru.New[string, item](cfg.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "cache").Logger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		lru:          store,
		log:          logger,
		now:          now,
		ctx:          ctx,
		cancel:       cancel,
		cleanupEvery: cfg.CleanupInterval,
	}

	if c.cleanupEvery > 0 {
		c.wg.Add(1)
		go c.expiryLoop()
	}

	c.log.Debug().
		Int("max_entries", cfg.MaxEntries).
		Dur("cleanup_interval", cfg.CleanupInterval).
		Msg("cache started")
	return c, nil
}

// Close stops background goroutines. After Close, Set and Delete return
// ErrClosed and Get reports every key as missing.
//
// Close is safe to call multiple times.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	// Cancel outside the lock so the expiry loop can finish its tick.
	cancel()
	c.wg.Wait()
	c.log.Debug().Msg("cache closed")
	return nil
}

// Set writes/overwrites a key.
//
// ttl <= 0 means "no expiration". The value is copied.
//
// When key is new and the cache is full, every expired entry is reclaimed
// first (an O(n) scan). Only if that frees nothing is the least recently used
// live entry evicted, so at most one live entry is evicted per call.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	now := c.now()
	it := item{value: cloneBytes(value)}
	if ttl > 0 {
		it.hasExpiry = true
		it.expiresAt = now.Add(ttl)
	}

	if !c.lru.Contains(key) && c.lru.Len() >= c.lru.Cap() {
		// Expired keys are already dead; reclaim them before evicting a live one.
		if c.deleteExpiredLocked(now) == 0 {
			victim, _, _ := c.lru.Oldest()
			c.log.Debug().Str("key", victim).Msg("evicting least recently used entry")
		}
	}

	c.lru.Put(key, it)
	return nil
}

// Get reads a key and marks it most recently used.
//
// Expired keys are removed on access. The returned slice is a copy.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}

	it, ok := c.lru.Peek(key)
	if !ok {
		c.misses++
		return nil, false
	}
	if it.expired(c.now()) {
		c.lru.Remove(key)
		c.expirations++
		c.misses++
		return nil, false
	}

	c.lru.Get(key)
	c.hits++
	return cloneBytes(it.value), true
}

// Delete removes a key if present.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.lru.Remove(key)
	return nil
}

// Len returns the number of currently stored entries.
//
// Note: Len includes entries that have expired but haven't been cleaned up yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys returns keys in MRU -> LRU order without changing recency.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.lru.EvictionCount(),
		Expirations: c.expirations,
		Len:         c.lru.Len(),
		Capacity:    c.lru.Cap(),
	}
}

// deleteExpiredLocked removes all expired keys.
//
// This is an O(n) scan. Keys are collected first because the LRU must not be
// modified while it is being iterated.
func (c *Cache) deleteExpiredLocked(now time.Time) int {
	var dead []string
	for key, it := range c.lru.All() {
		if it.expired(now) {
			dead = append(dead, key)
		}
	}
	for _, key := range dead {
		c.lru.Remove(key)
	}
	c.expirations += uint64(len(dead))
	return len(dead)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
