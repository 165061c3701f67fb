// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"

	"github.com/tilldesk/go-offline-sync/internal/adapter"
	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/internal/store"
	"github.com/tilldesk/go-offline-sync/models"
)

// Services aggregates the sync subsystem. Constructed once by the app; hosts
// reach individual services through this value instead of package globals.
type Services struct {
	Cache        CacheService
	Sync         *SyncEngine
	Connectivity *ConnectivityMonitor
	Notifier     NotificationSink
}

// NewServices wires the subsystem together: the throttled notifier wraps
// sink, the connectivity monitor probes remote, the cache reads through
// remote fetches, and the sync engine replays the queue. Start/Close of the
// long-running pieces stays with the caller.
func NewServices(
	storages *store.Storages,
	remote adapter.RemoteStore,
	sink NotificationSink,
	log *logger.Logger,
	cfg config.ClientSync,
) *Services {
	if cfg.NotifyWindow <= 0 {
		cfg.NotifyWindow = config.DefaultNotifyWindow
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = config.DefaultCacheTTL
	}

	notifier := NewThrottledNotifier(sink, cfg.NotifyWindow)
	connectivity := NewConnectivityMonitor(remote, notifier, log, cfg.ProbeInterval)
	cache := NewCacheService(storages.Cache, connectivity, cfg.CacheTTL, log)
	engine := NewSyncEngine(storages.SyncQueue, remote, connectivity, notifier, log, cfg)

	return &Services{
		Cache:        cache,
		Sync:         engine,
		Connectivity: connectivity,
		Notifier:     notifier,
	}
}

// InvalidateOnChange consumes remote change events and drops the cached
// snapshot of every touched table, so the next read refetches. The loop ends
// when events is closed or ctx is cancelled.
func (s *Services) InvalidateOnChange(ctx context.Context, events <-chan models.ChangeEvent, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			key := RemoteCacheKey(event.Table)
			if err := s.Cache.Invalidate(ctx, key); err != nil {
				log.Err(err).
					Str("func", "Services.InvalidateOnChange").
					Str("key", key).
					Msg("failed to invalidate cache entry")
				continue
			}
			log.Debug().
				Str("func", "Services.InvalidateOnChange").
				Str("table", event.Table).
				Str("row_id", event.RowID).
				Msg("cache invalidated by change event")
		}
	}
}
