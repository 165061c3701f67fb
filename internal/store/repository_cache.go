package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// cacheRepository is the SQLite-backed implementation of [CacheRepository].
// Expiry never triggers deletion here: the read path hands every stored
// entry back and leaves freshness judgements to the cache service.
type cacheRepository struct {
	*DB
	logger *logger.Logger
}

func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *cacheRepository) PutCacheEntry(ctx context.Context, entry models.CacheEntry) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertCacheEntry,
		entry.Key,
		string(entry.Value),
		entry.StoredAt,
		entry.ExpiresAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.PutCacheEntry").
			Str("key", entry.Key).
			Msg("failed to execute upsert for cache entry")
		return fmt.Errorf("failed to put cache entry (key=%s): %w", entry.Key, err)
	}

	return nil
}

func (r *cacheRepository) GetCacheEntry(ctx context.Context, key string) (models.CacheEntry, error) {
	log := logger.FromContext(ctx)

	var (
		entry models.CacheEntry
		value string
	)
	row := r.DB.QueryRowContext(ctx, getCacheEntry, key)
	scanErr := row.Scan(
		&entry.Key,
		&value,
		&entry.StoredAt,
		&entry.ExpiresAt,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.CacheEntry{}, ErrCacheEntryNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "cacheRepository.GetCacheEntry").
			Str("key", key).
			Msg("failed to scan cache entry row")
		return models.CacheEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	entry.Value = []byte(value)
	return entry, nil
}

func (r *cacheRepository) DeleteCacheEntry(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	// deleting an absent key is a no-op, not an error
	_, err := r.DB.ExecContext(ctx, deleteCacheEntry, key)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.DeleteCacheEntry").
			Str("key", key).
			Msg("failed to execute delete for cache entry")
		return fmt.Errorf("failed to delete cache entry (key=%s): %w", key, err)
	}

	return nil
}

func (r *cacheRepository) ClearCache(ctx context.Context) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, clearCache)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.ClearCache").
			Msg("failed to clear cache collection")
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}
