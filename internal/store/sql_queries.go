// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	upsertDraft = `
		INSERT INTO drafts (
			id,
			type,
			payload,
			saved_at,
			synced
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type     = excluded.type,
			payload  = excluded.payload,
			saved_at = excluded.saved_at,
			synced   = excluded.synced;`

	getSingleDraft = `
		SELECT
			id,
			type,
			payload,
			saved_at,
			synced
		FROM drafts
		WHERE id = ?;`

	getAllDrafts = `
		SELECT
			id,
			type,
			payload,
			saved_at,
			synced
		FROM drafts
		ORDER BY saved_at;`

	deleteDraft = `DELETE FROM drafts WHERE id = ?;`
	clearDrafts = `DELETE FROM drafts;`

	enqueueItem = `
		INSERT INTO sync_queue (
			id,
			operation,
			table_name,
			data,
			enqueued_at,
			retries
		) VALUES (?, ?, ?, ?, ?, ?);`

	getSingleQueueItem = `
		SELECT
			id,
			operation,
			table_name,
			data,
			enqueued_at,
			retries
		FROM sync_queue
		WHERE id = ?;`

	deleteQueueItem = `DELETE FROM sync_queue WHERE id = ?;`
	clearQueue      = `DELETE FROM sync_queue;`

	incrementRetries = `
		UPDATE sync_queue
		SET retries = retries + 1
		WHERE id = ?;`

	countQueueItems = `SELECT COUNT(*) FROM sync_queue;`

	upsertCacheEntry = `
		INSERT INTO cache_entries (
			key,
			value,
			stored_at,
			expires_at
		) VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			stored_at  = excluded.stored_at,
			expires_at = excluded.expires_at;`

	getCacheEntry = `
		SELECT
			key,
			value,
			stored_at,
			expires_at
		FROM cache_entries
		WHERE key = ?;`

	deleteCacheEntry = `DELETE FROM cache_entries WHERE key = ?;`
	clearCache       = `DELETE FROM cache_entries;`
)

// buildSelectQueueQuery builds the full queue snapshot query. Items are
// returned in enqueue order; the sync engine relies on this for in-batch
// ordering.
func buildSelectQueueQuery() (string, []any, error) {
	query, args, err := sq.Select(
		"id",
		"operation",
		"table_name",
		"data",
		"enqueued_at",
		"retries",
	).
		From("sync_queue").
		OrderBy("enqueued_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildDeleteExhaustedQuery builds the housekeeping sweep deleting every
// queue item whose retry counter has reached maxRetries.
func buildDeleteExhaustedQuery(maxRetries int) (string, []any, error) {
	query, args, err := sq.Delete("sync_queue").
		Where(sq.GtOrEq{"retries": maxRetries}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildDeleteQueueItemsQuery builds a batch delete for the given item ids.
func buildDeleteQueueItemsQuery(ids []string) (string, []any, error) {
	query, args, err := sq.Delete("sync_queue").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
