package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/internal/store"
	"github.com/tilldesk/go-offline-sync/models"
)

func newTestCache(online bool, ttl time.Duration) (CacheService, store.CacheRepository, *stubConnectivity) {
	repo := store.NewMemoryStore()
	connectivity := newStubConnectivity(online)
	cache := NewCacheService(repo, connectivity, ttl, logger.Nop())
	return cache, repo, connectivity
}

func staticFetch(value string) FetchFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		return json.RawMessage(value), nil
	}
}

func failingFetch(err error) FetchFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		return nil, err
	}
}

func TestCacheService_ColdOnlineFetchStoresAndReturns(t *testing.T) {
	cache, repo, _ := newTestCache(true, 5*time.Minute)

	result, err := cache.Read(context.Background(), "remote:orders", staticFetch(`[{"id":"o1"}]`), 0)
	require.NoError(t, err)
	assert.False(t, result.IsCached)
	assert.JSONEq(t, `[{"id":"o1"}]`, string(result.Value))

	entry, err := repo.GetCacheEntry(context.Background(), "remote:orders")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1"}]`, string(entry.Value))
	assert.True(t, entry.ExpiresAt.After(entry.StoredAt))
}

func TestCacheService_PerCallTTLOverridesDefault(t *testing.T) {
	cache, repo, _ := newTestCache(true, 5*time.Minute)

	_, err := cache.Read(context.Background(), "remote:orders", staticFetch(`[]`), 30*time.Second)
	require.NoError(t, err)

	entry, err := repo.GetCacheEntry(context.Background(), "remote:orders")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, entry.ExpiresAt.Sub(entry.StoredAt))
}

func TestCacheService_FreshHitServedFromCache(t *testing.T) {
	cache, repo, _ := newTestCache(false, 5*time.Minute)

	now := time.Now()
	require.NoError(t, repo.PutCacheEntry(context.Background(), models.CacheEntry{
		Key:       "remote:orders",
		Value:     []byte(`[{"id":"cached"}]`),
		StoredAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	}))

	result, err := cache.Read(context.Background(), "remote:orders", failingFetch(errors.New("fetcher must not be reached offline")), 0)
	require.NoError(t, err)
	assert.True(t, result.IsCached)
	assert.JSONEq(t, `[{"id":"cached"}]`, string(result.Value))
	assert.Nil(t, result.Refreshed)
}

func TestCacheService_FreshHitOnlineStartsBackgroundRefresh(t *testing.T) {
	cache, repo, _ := newTestCache(true, 5*time.Minute)

	now := time.Now()
	require.NoError(t, repo.PutCacheEntry(context.Background(), models.CacheEntry{
		Key:       "remote:orders",
		Value:     []byte(`[{"id":"old"}]`),
		StoredAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	}))

	result, err := cache.Read(context.Background(), "remote:orders", staticFetch(`[{"id":"new"}]`), 0)
	require.NoError(t, err)
	assert.True(t, result.IsCached)
	assert.JSONEq(t, `[{"id":"old"}]`, string(result.Value))
	require.NotNil(t, result.Refreshed)

	select {
	case refreshed := <-result.Refreshed:
		assert.JSONEq(t, `[{"id":"new"}]`, string(refreshed))
	case <-time.After(3 * time.Second):
		t.Fatal("background refresh never completed")
	}

	entry, err := repo.GetCacheEntry(context.Background(), "remote:orders")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"new"}]`, string(entry.Value))
}

func TestCacheService_StaleOnError(t *testing.T) {
	cache, repo, _ := newTestCache(true, time.Minute)

	// expired entry: stored well past its TTL
	past := time.Now().Add(-time.Hour)
	require.NoError(t, repo.PutCacheEntry(context.Background(), models.CacheEntry{
		Key:       "remote:orders",
		Value:     []byte(`[{"id":"stale"}]`),
		StoredAt:  past,
		ExpiresAt: past.Add(time.Minute),
	}))

	result, err := cache.Read(context.Background(), "remote:orders", failingFetch(errors.New("remote down")), 0)
	require.NoError(t, err)
	assert.True(t, result.IsCached)
	assert.JSONEq(t, `[{"id":"stale"}]`, string(result.Value))
}

func TestCacheService_OfflineExpiredEntryStillServed(t *testing.T) {
	cache, repo, _ := newTestCache(false, time.Minute)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, repo.PutCacheEntry(context.Background(), models.CacheEntry{
		Key:       "remote:orders",
		Value:     []byte(`[{"id":"stale"}]`),
		StoredAt:  past,
		ExpiresAt: past.Add(time.Minute),
	}))

	result, err := cache.Read(context.Background(), "remote:orders", failingFetch(errors.New("offline")), 0)
	require.NoError(t, err)
	assert.True(t, result.IsCached)
}

func TestCacheService_OfflineNoEntry(t *testing.T) {
	cache, _, _ := newTestCache(false, time.Minute)

	_, err := cache.Read(context.Background(), "remote:orders", failingFetch(errors.New("offline")), 0)
	assert.ErrorIs(t, err, ErrNoCachedDataOffline)
}

func TestCacheService_OnlineFetchFailsNoEntry(t *testing.T) {
	cache, _, _ := newTestCache(true, time.Minute)

	fetchErr := errors.New("remote down")
	_, err := cache.Read(context.Background(), "remote:orders", failingFetch(fetchErr), 0)
	assert.ErrorIs(t, err, fetchErr)
}

func TestCacheService_Invalidate(t *testing.T) {
	cache, repo, _ := newTestCache(true, time.Minute)

	_, err := cache.Read(context.Background(), "remote:orders", staticFetch(`[]`), 0)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), "remote:orders"))

	_, err = repo.GetCacheEntry(context.Background(), "remote:orders")
	assert.ErrorIs(t, err, store.ErrCacheEntryNotFound)

	// invalidating an absent key is a no-op
	assert.NoError(t, cache.Invalidate(context.Background(), "remote:orders"))
}

func TestCacheQuery_GetAndRefetch(t *testing.T) {
	cache, _, _ := newTestCache(true, time.Minute)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`[{"id":"o1"}]`), nil
	}

	query := NewCacheQuery(cache, RemoteCacheKey("orders"), fetch, 0)
	assert.Nil(t, query.Snapshot().Data)

	snap := query.Get(context.Background())
	require.NoError(t, snap.Err)
	assert.False(t, snap.IsCached)
	assert.JSONEq(t, `[{"id":"o1"}]`, string(snap.Data))
	assert.Equal(t, int32(1), calls.Load())

	// second Get hits the fresh cache without a synchronous fetch
	snap = query.Get(context.Background())
	require.NoError(t, snap.Err)
	assert.True(t, snap.IsCached)

	// Refetch forces a cold read
	snap = query.Refetch(context.Background())
	require.NoError(t, snap.Err)
	assert.False(t, snap.IsCached)
}

func TestCacheQuery_OfflineError(t *testing.T) {
	cache, _, _ := newTestCache(false, time.Minute)

	query := NewCacheQuery(cache, RemoteCacheKey("orders"), failingFetch(errors.New("offline")), 0)
	snap := query.Get(context.Background())
	assert.ErrorIs(t, snap.Err, ErrNoCachedDataOffline)
	assert.Nil(t, snap.Data)
}
