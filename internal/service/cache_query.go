// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// QuerySnapshot is the externally observable state of a [CacheQuery].
type QuerySnapshot struct {
	// Data is the last resolved value, nil until the first Get completes.
	Data json.RawMessage

	// Err is the error of the last resolution attempt, nil on success.
	Err error

	// IsCached is true when Data was served from the local cache.
	IsCached bool

	// Loading is true while a Get or Refetch is in flight.
	Loading bool
}

// CacheQuery binds one cache key and fetcher into a reusable query handle.
// Screens hold one handle per remote collection they render and re-read the
// snapshot after Get or Refetch.
type CacheQuery struct {
	cache CacheService
	key   string
	fetch FetchFunc
	ttl   time.Duration

	mu   sync.RWMutex
	snap QuerySnapshot
}

const cacheKeyPrefix = "remote:"

// RemoteCacheKey builds the cache key for a remote collection name.
func RemoteCacheKey(name string) string {
	return cacheKeyPrefix + name
}

// NewCacheQuery builds a query handle over cache for the given key and
// fetcher. Entries expire after ttl (non-positive selects the cache default).
// No fetch happens until Get is called.
func NewCacheQuery(cache CacheService, key string, fetch FetchFunc, ttl time.Duration) *CacheQuery {
	return &CacheQuery{cache: cache, key: key, fetch: fetch, ttl: ttl}
}

// Get resolves the query through the cache layer and returns the updated
// snapshot. Concurrent calls are serialised by the cache layer; the snapshot
// always reflects the most recent completed resolution.
func (q *CacheQuery) Get(ctx context.Context) QuerySnapshot {
	q.setLoading(true)

	result, err := q.cache.Read(ctx, q.key, q.fetch, q.ttl)

	q.mu.Lock()
	q.snap = QuerySnapshot{
		Data:     result.Value,
		Err:      err,
		IsCached: result.IsCached,
	}
	snap := q.snap
	q.mu.Unlock()

	return snap
}

// Refetch invalidates the cached entry and resolves the query again, forcing
// a cold read against the fetcher.
func (q *CacheQuery) Refetch(ctx context.Context) QuerySnapshot {
	// best effort: a failed invalidation falls back to a normal Get
	_ = q.cache.Invalidate(ctx, q.key)
	return q.Get(ctx)
}

// Snapshot returns the current query state without triggering a resolution.
func (q *CacheQuery) Snapshot() QuerySnapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.snap
}

func (q *CacheQuery) setLoading(loading bool) {
	q.mu.Lock()
	q.snap.Loading = loading
	q.mu.Unlock()
}
