package store

import (
	"context"
	"fmt"

	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
)

// Storages groups all local collections into a single value that can be
// passed around the service layer.
type Storages struct {
	// Drafts holds work-in-progress entities awaiting submission.
	Drafts DraftRepository

	// SyncQueue holds pending remote mutations awaiting replay.
	SyncQueue SyncQueueRepository

	// Cache holds time-boxed values written on successful remote fetches.
	Cache CacheRepository

	// Durable is false when the SQLite store could not be opened and the
	// collections live in process memory only.
	Durable bool
}

// NewStorages initialises the local durable store using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs a [Storages] value wired to the three collection
//     repositories.
//
// When opening or migrating fails, the store degrades instead of failing the
// caller: a usable in-memory [Storages] is returned together with an error
// wrapping [ErrStorageUnavailable], so the application keeps working with
// durability lost.
func NewStorages(cfg config.ClientStorage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		logger.Err(err).Msg("sqlite connection failed, degrading to in-memory storage")
		return NewMemoryStorages(), fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := db.Migrate(); err != nil {
		logger.Err(err).Msg("migration failed, degrading to in-memory storage")
		return NewMemoryStorages(), fmt.Errorf("%w: migration failed: %w", ErrStorageUnavailable, err)
	}

	return &Storages{
		Drafts:    NewDraftRepository(db, logger),
		SyncQueue: NewSyncQueueRepository(db, logger),
		Cache:     NewCacheRepository(db, logger),
		Durable:   true,
	}, nil
}

// NewMemoryStorages returns a non-durable [Storages] with all collections
// held in process memory. Used as the degraded fallback and in tests.
func NewMemoryStorages() *Storages {
	mem := NewMemoryStore()
	return &Storages{
		Drafts:    mem,
		SyncQueue: mem,
		Cache:     mem,
		Durable:   false,
	}
}
