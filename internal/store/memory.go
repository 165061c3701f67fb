package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tilldesk/go-offline-sync/models"
)

// memoryStore keeps all three collections in process memory. It backs the
// degraded mode entered when the SQLite store cannot be opened: the sync
// core keeps working, durability is simply lost on restart. It is also the
// storage used by most service tests.
//
// Payloads are copied on write and read so callers cannot alias the stored
// slices.
type memoryStore struct {
	mu      sync.RWMutex
	drafts  map[string]models.Draft
	queue   map[string]models.SyncQueueItem
	entries map[string]models.CacheEntry
}

// NewMemoryStore returns repositories for all three collections backed by a
// single in-memory table set.
func NewMemoryStore() *memoryStore {
	return &memoryStore{
		drafts:  make(map[string]models.Draft),
		queue:   make(map[string]models.SyncQueueItem),
		entries: make(map[string]models.CacheEntry),
	}
}

func (m *memoryStore) SaveDraft(_ context.Context, draft models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft.Payload = append([]byte(nil), draft.Payload...)
	m.drafts[draft.ID] = draft
	return nil
}

func (m *memoryStore) GetDraft(_ context.Context, id string) (models.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	draft, ok := m.drafts[id]
	if !ok {
		return models.Draft{}, ErrDraftNotFound
	}
	draft.Payload = append([]byte(nil), draft.Payload...)
	return draft, nil
}

func (m *memoryStore) GetAllDrafts(_ context.Context) ([]models.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drafts := make([]models.Draft, 0, len(m.drafts))
	for _, draft := range m.drafts {
		draft.Payload = append([]byte(nil), draft.Payload...)
		drafts = append(drafts, draft)
	}
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].SavedAt.Before(drafts[j].SavedAt)
	})
	return drafts, nil
}

func (m *memoryStore) DeleteDraft(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, id)
	return nil
}

func (m *memoryStore) ClearDrafts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts = make(map[string]models.Draft)
	return nil
}

func (m *memoryStore) Enqueue(_ context.Context, item models.SyncQueueItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.Data = append([]byte(nil), item.Data...)
	m.queue[item.ID] = item
	return nil
}

func (m *memoryStore) GetQueueItem(_ context.Context, id string) (models.SyncQueueItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.queue[id]
	if !ok {
		return models.SyncQueueItem{}, ErrQueueItemNotFound
	}
	item.Data = append([]byte(nil), item.Data...)
	return item, nil
}

func (m *memoryStore) GetAllQueueItems(_ context.Context) ([]models.SyncQueueItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]models.SyncQueueItem, 0, len(m.queue))
	for _, item := range m.queue {
		item.Data = append([]byte(nil), item.Data...)
		items = append(items, item)
	}
	// enqueue order, same as the SQL snapshot query
	sort.Slice(items, func(i, j int) bool {
		if items[i].EnqueuedAt.Equal(items[j].EnqueuedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].EnqueuedAt.Before(items[j].EnqueuedAt)
	})
	return items, nil
}

func (m *memoryStore) DeleteQueueItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.queue, id)
	return nil
}

func (m *memoryStore) IncrementRetries(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.queue[id]
	if !ok {
		return ErrQueueItemNotFound
	}
	item.Retries++
	m.queue[id] = item
	return nil
}

func (m *memoryStore) DeleteExhausted(_ context.Context, maxRetries int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, item := range m.queue {
		if item.Retries >= maxRetries {
			delete(m.queue, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryStore) CountQueueItems(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.queue), nil
}

func (m *memoryStore) ClearQueue(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = make(map[string]models.SyncQueueItem)
	return nil
}

func (m *memoryStore) PutCacheEntry(_ context.Context, entry models.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.Value = append([]byte(nil), entry.Value...)
	m.entries[entry.Key] = entry
	return nil
}

func (m *memoryStore) GetCacheEntry(_ context.Context, key string) (models.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return models.CacheEntry{}, ErrCacheEntryNotFound
	}
	entry.Value = append([]byte(nil), entry.Value...)
	return entry, nil
}

func (m *memoryStore) DeleteCacheEntry(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *memoryStore) ClearCache(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]models.CacheEntry)
	return nil
}
