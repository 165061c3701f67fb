// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// ForceSyncer is the slice of the sync engine the worker needs.
type ForceSyncer interface {
	ForceSync(ctx context.Context) models.SyncSummary
}

// SyncWorker forces a sync pass on a fixed interval. It is a safety net
// against missed triggers: the engine already reacts to enqueues and
// reconnects, the worker only guarantees an upper bound on how long a queued
// item can sit untried while the client stays online.
type SyncWorker struct {
	engine   ForceSyncer
	logger   *logger.Logger
	interval time.Duration

	ctx context.Context

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncWorker builds the periodic worker. If interval is zero or negative
// it defaults to 5 minutes. The worker is idle until Run.
func NewSyncWorker(ctx context.Context, engine ForceSyncer, logger *logger.Logger, interval time.Duration) *SyncWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &SyncWorker{
		engine:   engine,
		logger:   logger,
		interval: interval,
		ctx:      ctx,
	}
}

// Run implements [Worker]. It stops any previously running ticker goroutine,
// then launches a new one that forces a sync pass every interval. The
// goroutine exits when the worker context is cancelled or Stop is called.
func (w *SyncWorker) Run() {
	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(w.ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	w.logger.Info().
		Str("func", "SyncWorker.Run").
		Dur("interval", w.interval).
		Msg("periodic sync worker started")

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				summary := w.engine.ForceSync(jobCtx)
				if summary.Synced > 0 || summary.Failed > 0 || summary.Dropped > 0 {
					w.logger.Info().
						Str("func", "SyncWorker.Run").
						Int("synced", summary.Synced).
						Int("failed", summary.Failed).
						Int("dropped", summary.Dropped).
						Msg("periodic sync pass finished")
				}
			}
		}
	}()
}

// Stop signals the ticker goroutine to exit and blocks until it has fully
// terminated. Safe to call when the worker is not running.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
