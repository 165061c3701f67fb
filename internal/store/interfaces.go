package store

import (
	"context"

	"github.com/tilldesk/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DraftRepository is the local collection of work-in-progress entities.
// A draft is upserted whole by primary key; readers never observe a
// half-written record.
type DraftRepository interface {
	// SaveDraft upserts the draft by its id.
	SaveDraft(ctx context.Context, draft models.Draft) error

	// GetDraft returns the draft with the given id, or [ErrDraftNotFound].
	GetDraft(ctx context.Context, id string) (models.Draft, error)

	// GetAllDrafts returns every stored draft.
	GetAllDrafts(ctx context.Context) ([]models.Draft, error)

	// DeleteDraft removes the draft with the given id. Deleting an absent
	// id is not an error.
	DeleteDraft(ctx context.Context, id string) error

	// ClearDrafts empties the whole collection. Used only for full resets.
	ClearDrafts(ctx context.Context) error
}

// SyncQueueRepository is the durable list of pending remote mutations.
type SyncQueueRepository interface {
	// Enqueue appends a new queue item.
	Enqueue(ctx context.Context, item models.SyncQueueItem) error

	// GetQueueItem returns the item with the given id, or
	// [ErrQueueItemNotFound].
	GetQueueItem(ctx context.Context, id string) (models.SyncQueueItem, error)

	// GetAllQueueItems returns the full queue snapshot in enqueue order.
	GetAllQueueItems(ctx context.Context) ([]models.SyncQueueItem, error)

	// DeleteQueueItem removes the item with the given id. Deleting an
	// absent id is not an error.
	DeleteQueueItem(ctx context.Context, id string) error

	// IncrementRetries bumps the retry counter of the item in place.
	IncrementRetries(ctx context.Context, id string) error

	// DeleteExhausted removes every item whose retry counter has reached
	// maxRetries and returns how many were removed.
	DeleteExhausted(ctx context.Context, maxRetries int) (int, error)

	// CountQueueItems returns the number of pending items.
	CountQueueItems(ctx context.Context) (int, error)

	// ClearQueue empties the whole collection. Used only for full resets.
	ClearQueue(ctx context.Context) error
}

// CacheRepository is the keyed collection of time-boxed cached values.
// Expired entries are never evicted automatically; they stay readable as
// stale fallbacks until overwritten or deleted.
type CacheRepository interface {
	// PutCacheEntry upserts the entry by its key.
	PutCacheEntry(ctx context.Context, entry models.CacheEntry) error

	// GetCacheEntry returns the entry for the key, or
	// [ErrCacheEntryNotFound]. Expiry is not checked here.
	GetCacheEntry(ctx context.Context, key string) (models.CacheEntry, error)

	// DeleteCacheEntry removes the entry for the key. Deleting an absent
	// key is not an error.
	DeleteCacheEntry(ctx context.Context, key string) error

	// ClearCache empties the whole collection. Used only for full resets.
	ClearCache(ctx context.Context) error
}
