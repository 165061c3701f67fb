// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/internal/store"
	"github.com/tilldesk/go-offline-sync/models"
)

type cacheService struct {
	cache        store.CacheRepository
	connectivity Connectivity
	ttl          time.Duration
	logger       *logger.Logger

	now func() time.Time
}

// NewCacheService builds the read-through cache over the local cache
// collection. Entries written by Read expire after ttl but are never evicted:
// an expired entry stays available for stale-on-error reads until it is
// overwritten or invalidated.
func NewCacheService(cache store.CacheRepository, connectivity Connectivity, ttl time.Duration, logger *logger.Logger) CacheService {
	return &cacheService{
		cache:        cache,
		connectivity: connectivity,
		ttl:          ttl,
		logger:       logger,
		now:          time.Now,
	}
}

// Read implements [CacheService]. A non-positive ttl falls back to the
// service default.
func (s *cacheService) Read(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) (CacheResult, error) {
	log := logger.FromContext(ctx)
	if ttl <= 0 {
		ttl = s.ttl
	}

	entry, err := s.cache.GetCacheEntry(ctx, key)
	hasEntry := err == nil
	if err != nil && !errors.Is(err, store.ErrCacheEntryNotFound) {
		log.Err(err).
			Str("func", "cacheService.Read").
			Str("key", key).
			Msg("cache lookup failed, treating as miss")
	}

	if hasEntry && entry.Fresh(s.now()) {
		result := CacheResult{Value: entry.Value, IsCached: true}
		if s.connectivity.IsOnline() {
			result.Refreshed = s.refreshInBackground(key, fetch, ttl)
		}
		return result, nil
	}

	if !s.connectivity.IsOnline() {
		if hasEntry {
			return CacheResult{Value: entry.Value, IsCached: true}, nil
		}
		return CacheResult{}, fmt.Errorf("%w (key=%s)", ErrNoCachedDataOffline, key)
	}

	value, fetchErr := fetch(ctx)
	if fetchErr != nil {
		log.Warn().
			Err(fetchErr).
			Str("func", "cacheService.Read").
			Str("key", key).
			Msg("fetch failed")

		// stale-on-error: an expired entry still beats no data
		if hasEntry {
			return CacheResult{Value: entry.Value, IsCached: true}, nil
		}
		return CacheResult{}, fmt.Errorf("fetch failed with no cached fallback (key=%s): %w", key, fetchErr)
	}

	s.storeEntry(ctx, key, value, ttl)
	return CacheResult{Value: value}, nil
}

// Invalidate implements [CacheService].
func (s *cacheService) Invalidate(ctx context.Context, key string) error {
	return s.cache.DeleteCacheEntry(ctx, key)
}

// refreshInBackground fetches the value again without blocking the caller.
// The refreshed value is written through to the cache and sent on the
// returned channel, which is closed afterwards. A failed refresh closes the
// channel without a value.
func (s *cacheService) refreshInBackground(key string, fetch FetchFunc, ttl time.Duration) <-chan json.RawMessage {
	out := make(chan json.RawMessage, 1)

	go func() {
		defer close(out)

		ctx := context.Background()
		value, err := fetch(ctx)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("func", "cacheService.refreshInBackground").
				Str("key", key).
				Msg("background refresh failed")
			return
		}

		s.storeEntry(ctx, key, value, ttl)
		out <- value
	}()

	return out
}

func (s *cacheService) storeEntry(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) {
	now := s.now()
	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	// a failed cache write degrades freshness, not correctness
	if err := s.cache.PutCacheEntry(ctx, entry); err != nil {
		s.logger.Err(err).
			Str("func", "cacheService.storeEntry").
			Str("key", key).
			Msg("failed to store cache entry")
	}
}
