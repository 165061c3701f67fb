package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// draftRepository is the SQLite-backed implementation of [DraftRepository].
// Every write is a single-statement whole-record upsert, so readers never
// observe a partially written draft.
type draftRepository struct {
	*DB
	logger *logger.Logger
}

func NewDraftRepository(db *DB, logger *logger.Logger) DraftRepository {
	return &draftRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *draftRepository) SaveDraft(ctx context.Context, draft models.Draft) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertDraft,
		draft.ID,
		draft.Type,
		string(draft.Payload),
		draft.SavedAt,
		draft.Synced,
	)
	if err != nil {
		log.Err(err).
			Str("func", "draftRepository.SaveDraft").
			Str("draft_id", draft.ID).
			Str("type", draft.Type).
			Msg("failed to execute upsert for draft")
		return fmt.Errorf("failed to save draft (id=%s): %w", draft.ID, err)
	}

	return nil
}

func (r *draftRepository) GetDraft(ctx context.Context, id string) (models.Draft, error) {
	log := logger.FromContext(ctx)

	var (
		draft   models.Draft
		payload string
	)
	row := r.DB.QueryRowContext(ctx, getSingleDraft, id)
	scanErr := row.Scan(
		&draft.ID,
		&draft.Type,
		&payload,
		&draft.SavedAt,
		&draft.Synced,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.Draft{}, ErrDraftNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "draftRepository.GetDraft").
			Str("draft_id", id).
			Msg("failed to scan draft row")
		return models.Draft{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	draft.Payload = []byte(payload)
	return draft, nil
}

func (r *draftRepository) GetAllDrafts(ctx context.Context) ([]models.Draft, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getAllDrafts)
	if err != nil {
		log.Err(err).
			Str("func", "draftRepository.GetAllDrafts").
			Msg("failed to execute query for getting all drafts")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var drafts []models.Draft

	for rows.Next() {
		var (
			draft   models.Draft
			payload string
		)

		scanErr := rows.Scan(
			&draft.ID,
			&draft.Type,
			&payload,
			&draft.SavedAt,
			&draft.Synced,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "draftRepository.GetAllDrafts").
				Msg("failed to scan draft row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		draft.Payload = []byte(payload)
		drafts = append(drafts, draft)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "draftRepository.GetAllDrafts").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating draft rows: %w", rowsErr)
	}

	return drafts, nil
}

func (r *draftRepository) DeleteDraft(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	// deleting an absent id is a no-op, not an error
	_, err := r.DB.ExecContext(ctx, deleteDraft, id)
	if err != nil {
		log.Err(err).
			Str("func", "draftRepository.DeleteDraft").
			Str("draft_id", id).
			Msg("failed to execute delete for draft")
		return fmt.Errorf("failed to delete draft (id=%s): %w", id, err)
	}

	return nil
}

func (r *draftRepository) ClearDrafts(ctx context.Context) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, clearDrafts)
	if err != nil {
		log.Err(err).
			Str("func", "draftRepository.ClearDrafts").
			Msg("failed to clear drafts collection")
		return fmt.Errorf("failed to clear drafts: %w", err)
	}

	return nil
}
