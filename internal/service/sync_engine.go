// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/adapter"
	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/internal/store"
	"github.com/tilldesk/go-offline-sync/models"
)

// SyncEngine replays queued remote mutations when connectivity allows. One
// engine instance serves the whole process.
//
// A sync pass snapshots the queue, walks it in fixed-size batches, and
// replays each batch concurrently; batch k is fully awaited before batch k+1
// starts, so a slow item delays only its own batch. Per-item outcomes are
// independent: success deletes the item, failure increments its retry counter
// in place, and an item whose counter has reached the cap is dropped
// permanently. Remote errors never escape a pass.
type SyncEngine struct {
	queue        store.SyncQueueRepository
	remote       adapter.RemoteStore
	connectivity Connectivity
	notifier     NotificationSink
	logger       *logger.Logger

	batchSize  int
	maxRetries int
	debounce   time.Duration

	syncing atomic.Bool
	pending atomic.Int64
	closed  atomic.Bool

	kicks       chan struct{}
	interrupts  chan struct{}
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewSyncEngine builds the engine. Zero-valued tunables fall back to the
// package defaults from internal/config. The engine is idle until Start.
func NewSyncEngine(
	queue store.SyncQueueRepository,
	remote adapter.RemoteStore,
	connectivity Connectivity,
	notifier NotificationSink,
	logger *logger.Logger,
	cfg config.ClientSync,
) *SyncEngine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = config.DefaultMaxRetries
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultDebounce
	}

	return &SyncEngine{
		queue:        queue,
		remote:       remote,
		connectivity: connectivity,
		notifier:     notifier,
		logger:       logger,
		batchSize:    cfg.BatchSize,
		maxRetries:   cfg.MaxRetries,
		debounce:     cfg.Debounce,
		kicks:        make(chan struct{}, 1),
		interrupts:   make(chan struct{}, 1),
	}
}

// Start primes the pending counter, subscribes to connectivity transitions,
// launches the debounce dispatcher, and schedules an initial pass when the
// client is already online.
func (e *SyncEngine) Start(ctx context.Context) {
	engineCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	if count, err := e.queue.CountQueueItems(ctx); err == nil {
		e.pending.Store(int64(count))
	}

	e.unsubscribe = e.connectivity.OnChange(func(online bool) {
		if online {
			e.ScheduleSync()
		}
	})

	e.wg.Add(1)
	go e.dispatch(engineCtx)

	if e.connectivity.IsOnline() {
		e.ScheduleSync()
	}
}

// Close unsubscribes from connectivity, stops the dispatcher, and waits for
// an in-flight pass to finish. The engine accepts no work afterwards.
func (e *SyncEngine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}

	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

// Enqueue durably appends a remote mutation to the sync queue and, when the
// client is online, schedules a debounced sync pass. The payload is opaque
// JSON; update and delete payloads must carry the target row id.
func (e *SyncEngine) Enqueue(ctx context.Context, op models.Operation, table string, data json.RawMessage) (models.SyncQueueItem, error) {
	if e.closed.Load() {
		return models.SyncQueueItem{}, ErrEngineClosed
	}
	if !op.Valid() {
		return models.SyncQueueItem{}, fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}

	now := time.Now()
	item := models.SyncQueueItem{
		ID:         models.NewSyncQueueItemID(table, op, now),
		Operation:  op,
		Table:      table,
		Data:       data,
		EnqueuedAt: now,
	}

	if err := e.queue.Enqueue(ctx, item); err != nil {
		return models.SyncQueueItem{}, err
	}
	e.pending.Add(1)

	if e.connectivity.IsOnline() {
		e.ScheduleSync()
	}

	return item, nil
}

// ScheduleSync requests a sync pass after the debounce interval. Requests
// arriving inside the interval coalesce into a single pass; the interval
// restarts on every request.
func (e *SyncEngine) ScheduleSync() {
	if e.closed.Load() {
		return
	}

	select {
	case e.kicks <- struct{}{}:
	default:
	}
}

// ForceSync cancels any pending debounce and runs a pass immediately. It
// returns the pass summary; a zero summary means the pass was skipped
// (offline, or another pass already running).
func (e *SyncEngine) ForceSync(ctx context.Context) models.SyncSummary {
	if e.closed.Load() {
		return models.SyncSummary{}
	}

	select {
	case e.interrupts <- struct{}{}:
	default:
	}

	return e.runPass(ctx)
}

// Status reports the engine state for host UIs.
func (e *SyncEngine) Status() models.SyncStatus {
	return models.SyncStatus{
		IsOnline:     e.connectivity.IsOnline(),
		IsSyncing:    e.syncing.Load(),
		PendingCount: int(e.pending.Load()),
	}
}

// dispatch owns the debounce timer. Kicks restart the timer; the pass runs
// when the timer fires with no newer kick. An interrupt from ForceSync
// discards the pending timer so the forced pass is not followed by a
// debounced duplicate.
func (e *SyncEngine) dispatch(ctx context.Context) {
	defer e.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	stopTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer = nil
		fire = nil
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return

		case <-e.kicks:
			if timer == nil {
				timer = time.NewTimer(e.debounce)
				fire = timer.C
			} else {
				stopTimer()
				timer = time.NewTimer(e.debounce)
				fire = timer.C
			}

		case <-e.interrupts:
			stopTimer()

		case <-fire:
			timer = nil
			fire = nil
			e.runPass(ctx)
		}
	}
}

// runPass executes one sync pass. Only one pass runs at a time: a request
// made while a pass is in flight is ignored, and items enqueued mid-pass
// wait for the next invocation because the pass works on a snapshot.
func (e *SyncEngine) runPass(ctx context.Context) models.SyncSummary {
	log := logger.FromContext(ctx)

	if !e.connectivity.IsOnline() {
		return models.SyncSummary{}
	}
	if !e.syncing.CompareAndSwap(false, true) {
		return models.SyncSummary{}
	}
	defer e.syncing.Store(false)

	items, err := e.queue.GetAllQueueItems(ctx)
	if err != nil {
		log.Err(err).
			Str("func", "SyncEngine.runPass").
			Msg("failed to snapshot sync queue")
		return models.SyncSummary{}
	}
	if len(items) == 0 {
		return models.SyncSummary{}
	}

	log.Info().
		Str("func", "SyncEngine.runPass").
		Int("items", len(items)).
		Msg("sync pass started")

	var summary models.SyncSummary
	for start := 0; start < len(items); start += e.batchSize {
		end := start + e.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := e.processBatch(ctx, items[start:end])

		summary.Synced += batch.Synced
		summary.Failed += batch.Failed
		summary.Dropped += batch.Dropped
	}

	// terminal sweep: drop items whose counter reached the cap this pass
	if dropped, sweepErr := e.queue.DeleteExhausted(ctx, e.maxRetries); sweepErr == nil {
		summary.Dropped += dropped
	} else {
		log.Err(sweepErr).
			Str("func", "SyncEngine.runPass").
			Msg("exhausted sweep failed")
	}

	if count, countErr := e.queue.CountQueueItems(ctx); countErr == nil {
		e.pending.Store(int64(count))
	}

	log.Info().
		Str("func", "SyncEngine.runPass").
		Int("synced", summary.Synced).
		Int("failed", summary.Failed).
		Int("dropped", summary.Dropped).
		Msg("sync pass finished")

	if summary.Synced > 0 {
		e.notifier.Notify(models.Notification{
			Title:    "Sync complete",
			Message:  fmt.Sprintf("%d changes synced", summary.Synced),
			Severity: models.SeveritySuccess,
		})
	} else if summary.Failed > 0 {
		e.notifier.Notify(models.Notification{
			Title:    "Sync incomplete",
			Message:  fmt.Sprintf("%d changes pending retry", summary.Failed),
			Severity: models.SeverityWarning,
		})
	}

	return summary
}

// processBatch replays one batch concurrently and waits for every item to
// settle before returning.
func (e *SyncEngine) processBatch(ctx context.Context, batch []models.SyncQueueItem) models.SyncSummary {
	log := logger.FromContext(ctx)

	var (
		mu      sync.Mutex
		summary models.SyncSummary
		wg      sync.WaitGroup
	)

	for _, item := range batch {
		if item.Retries >= e.maxRetries {
			if err := e.queue.DeleteQueueItem(ctx, item.ID); err != nil {
				log.Err(err).
					Str("func", "SyncEngine.processBatch").
					Str("item_id", item.ID).
					Msg("failed to drop exhausted item")
				continue
			}
			log.Warn().
				Str("func", "SyncEngine.processBatch").
				Str("item_id", item.ID).
				Int("retries", item.Retries).
				Msg("dropping permanently failed item")
			summary.Dropped++
			continue
		}

		wg.Add(1)
		go func(item models.SyncQueueItem) {
			defer wg.Done()

			replayErr := e.replay(ctx, item)

			mu.Lock()
			defer mu.Unlock()

			if replayErr != nil {
				log.Warn().
					Err(replayErr).
					Str("func", "SyncEngine.processBatch").
					Str("item_id", item.ID).
					Int("retries", item.Retries+1).
					Msg("replay failed")
				if err := e.queue.IncrementRetries(ctx, item.ID); err != nil {
					log.Err(err).
						Str("func", "SyncEngine.processBatch").
						Str("item_id", item.ID).
						Msg("failed to increment retries")
				}
				summary.Failed++
				return
			}

			if err := e.queue.DeleteQueueItem(ctx, item.ID); err != nil {
				log.Err(err).
					Str("func", "SyncEngine.processBatch").
					Str("item_id", item.ID).
					Msg("failed to delete synced item")
			}
			summary.Synced++
		}(item)
	}

	wg.Wait()
	return summary
}

func (e *SyncEngine) replay(ctx context.Context, item models.SyncQueueItem) error {
	switch item.Operation {
	case models.OperationCreate:
		return e.remote.Insert(ctx, item.Table, item.Data)

	case models.OperationUpdate:
		rowID, err := models.RowID(item.Data)
		if err != nil {
			return fmt.Errorf("update payload (item=%s): %w", item.ID, err)
		}
		return e.remote.Update(ctx, item.Table, rowID, item.Data)

	case models.OperationDelete:
		rowID, err := models.RowID(item.Data)
		if err != nil {
			return fmt.Errorf("delete payload (item=%s): %w", item.ID, err)
		}
		return e.remote.Delete(ctx, item.Table, rowID)

	default:
		return fmt.Errorf("%w: %q", ErrInvalidOperation, item.Operation)
	}
}
