package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// syncQueueRepository is the SQLite-backed implementation of
// [SyncQueueRepository]. Each mutation is a single independently atomic
// statement; no multi-step transaction spans two records.
type syncQueueRepository struct {
	*DB
	logger *logger.Logger
}

func NewSyncQueueRepository(db *DB, logger *logger.Logger) SyncQueueRepository {
	return &syncQueueRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *syncQueueRepository) Enqueue(ctx context.Context, item models.SyncQueueItem) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, enqueueItem,
		item.ID,
		string(item.Operation),
		item.Table,
		string(item.Data),
		item.EnqueuedAt,
		item.Retries,
	)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.Enqueue").
			Str("item_id", item.ID).
			Str("table", item.Table).
			Str("operation", string(item.Operation)).
			Msg("failed to enqueue sync queue item")
		return fmt.Errorf("failed to enqueue item (id=%s): %w", item.ID, err)
	}

	return nil
}

func (r *syncQueueRepository) GetQueueItem(ctx context.Context, id string) (models.SyncQueueItem, error) {
	log := logger.FromContext(ctx)

	var (
		item      models.SyncQueueItem
		operation string
		data      string
	)
	row := r.DB.QueryRowContext(ctx, getSingleQueueItem, id)
	scanErr := row.Scan(
		&item.ID,
		&operation,
		&item.Table,
		&data,
		&item.EnqueuedAt,
		&item.Retries,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.SyncQueueItem{}, ErrQueueItemNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "syncQueueRepository.GetQueueItem").
			Str("item_id", id).
			Msg("failed to scan sync queue row")
		return models.SyncQueueItem{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	item.Operation = models.Operation(operation)
	item.Data = []byte(data)
	return item, nil
}

func (r *syncQueueRepository) GetAllQueueItems(ctx context.Context) ([]models.SyncQueueItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectQueueQuery()
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.GetAllQueueItems").
			Msg("failed to build queue snapshot query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.GetAllQueueItems").
			Msg("failed to execute queue snapshot query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.SyncQueueItem

	for rows.Next() {
		var (
			item      models.SyncQueueItem
			operation string
			data      string
		)

		scanErr := rows.Scan(
			&item.ID,
			&operation,
			&item.Table,
			&data,
			&item.EnqueuedAt,
			&item.Retries,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "syncQueueRepository.GetAllQueueItems").
				Msg("failed to scan sync queue row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		item.Operation = models.Operation(operation)
		item.Data = []byte(data)
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "syncQueueRepository.GetAllQueueItems").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating sync queue rows: %w", rowsErr)
	}

	return items, nil
}

func (r *syncQueueRepository) DeleteQueueItem(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	// deleting an absent id is a no-op, not an error
	_, err := r.DB.ExecContext(ctx, deleteQueueItem, id)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.DeleteQueueItem").
			Str("item_id", id).
			Msg("failed to execute delete for sync queue item")
		return fmt.Errorf("failed to delete queue item (id=%s): %w", id, err)
	}

	return nil
}

func (r *syncQueueRepository) IncrementRetries(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, incrementRetries, id)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.IncrementRetries").
			Str("item_id", id).
			Msg("failed to execute increment retries for sync queue item")
		return fmt.Errorf("failed to increment retries (id=%s): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.IncrementRetries").
			Str("item_id", id).
			Msg("failed to get rows affected after increment retries")
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}

	if rowsAffected == 0 {
		log.Warn().
			Str("func", "syncQueueRepository.IncrementRetries").
			Str("item_id", id).
			Msg("no rows affected during increment retries: item not found")
		return fmt.Errorf("failed to increment retries: %w (id=%s)", ErrQueueItemNotFound, id)
	}

	return nil
}

func (r *syncQueueRepository) DeleteExhausted(ctx context.Context, maxRetries int) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteExhaustedQuery(maxRetries)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.DeleteExhausted").
			Msg("failed to build exhausted sweep query")
		return 0, err
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.DeleteExhausted").
			Int("max_retries", maxRetries).
			Msg("failed to sweep exhausted sync queue items")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after exhausted sweep: %w", err)
	}

	return int(rowsAffected), nil
}

func (r *syncQueueRepository) CountQueueItems(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := r.DB.QueryRowContext(ctx, countQueueItems).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.CountQueueItems").
			Msg("failed to count sync queue items")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (r *syncQueueRepository) ClearQueue(ctx context.Context) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, clearQueue)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.ClearQueue").
			Msg("failed to clear sync queue collection")
		return fmt.Errorf("failed to clear sync queue: %w", err)
	}

	return nil
}
