// Package cache implements a single-process, in-memory key–value cache shared
// between goroutines.
//
// Goals for this package:
//   - Keep the LRU core (internal/lru) lock-free and put all locking here
//   - One mutex per cache so lookup+promotion and insert+eviction are atomic
//   - Copy byte slices in and out so callers never alias cache contents
//   - Support per-entry TTL with both lazy and active expiration
//   - Own and cleanly stop long-lived goroutines (no leaks on shutdown)
package cache
