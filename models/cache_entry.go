package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is a keyed, time-boxed cached value written on every successful
// remote fetch.
//
// Expiry is advisory: a read past ExpiresAt is a miss for freshness purposes,
// but the entry remains usable as a stale fallback when a fresh fetch fails.
// Entries are only removed by explicit invalidation or overwrite, never by
// TTL-driven background eviction.
type CacheEntry struct {
	// Key is the caller-chosen cache key, typically namespaced
	// (e.g. "remote:orders").
	Key string `json:"key"`

	// Value is the cached serialized data.
	Value json.RawMessage `json:"value"`

	// StoredAt is the time the entry was written.
	StoredAt time.Time `json:"stored_at"`

	// ExpiresAt marks the end of the freshness window (StoredAt + TTL).
	ExpiresAt time.Time `json:"expires_at"`
}

// Fresh reports whether the entry is still within its freshness window.
func (e CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
