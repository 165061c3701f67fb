package workers

import (
	"context"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/logger"
)

// Workers aggregates the agent's background jobs.
type Workers struct {
	workers []Worker

	Sync *SyncWorker
}

// NewWorkers builds the standard worker set: currently just the periodic
// sync worker.
func NewWorkers(ctx context.Context, engine ForceSyncer, logger *logger.Logger, syncInterval time.Duration) *Workers {
	syncWorker := NewSyncWorker(ctx, engine, logger, syncInterval)

	return &Workers{
		workers: []Worker{syncWorker},
		Sync:    syncWorker,
	}
}

// Run starts every registered worker in registration order.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop stops the workers that support stopping.
func (w *Workers) Stop() {
	if w.Sync != nil {
		w.Sync.Stop()
	}
}
