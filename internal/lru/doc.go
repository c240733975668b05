// Package lru implements a generically-typed, fixed-capacity LRU cache.
//
// The recency list lives in an arena of slots addressed by integer index and
// the key index maps keys to those slots, so an entry keeps the same handle
// while it moves around the list. The cache does no locking; callers that
// share one between goroutines must serialize access (see internal/cache).
package lru
