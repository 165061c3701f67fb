package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Operation identifies the kind of remote mutation a queue item replays.
type Operation string

const (
	// OperationCreate inserts a new row into the target table.
	OperationCreate Operation = "create"

	// OperationUpdate overwrites an existing row, keyed by the row id
	// carried inside the item payload.
	OperationUpdate Operation = "update"

	// OperationDelete removes an existing row, keyed by the row id
	// carried inside the item payload.
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the three supported mutations.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// SyncQueueItem is a durable record of one pending remote mutation.
//
// An item is removed once its mutation succeeds remotely, or once Retries
// reaches the configured maximum — at which point the mutation is permanently
// dropped and never silently retried again.
type SyncQueueItem struct {
	// ID uniquely identifies the item, generated as
	// "{table}-{operation}-{unix-milli}".
	ID string `json:"id"`

	// Operation is the mutation kind: create, update or delete.
	Operation Operation `json:"operation"`

	// Table names the remote collection the mutation targets.
	Table string `json:"table"`

	// Data is the row payload. For update and delete it must include the
	// row's primary key under the "id" field.
	Data json.RawMessage `json:"data"`

	// EnqueuedAt is the time the item was appended to the queue.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// Retries counts failed replay attempts, starting at zero.
	Retries int `json:"retries"`
}

// NewSyncQueueItemID builds a queue item identifier from the target table,
// the mutation kind, and the current clock.
func NewSyncQueueItemID(table string, op Operation, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", table, op, now.UnixMilli())
}

// ErrNoRowID is returned by RowID when a payload carries no usable "id" key.
var ErrNoRowID = errors.New("payload has no row id")

// RowID extracts the primary key from a row payload. Update and delete
// mutations are keyed by this value.
func RowID(data json.RawMessage) (string, error) {
	var row struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return "", fmt.Errorf("decode row payload: %w", err)
	}

	switch id := row.ID.(type) {
	case string:
		if id == "" {
			return "", ErrNoRowID
		}
		return id, nil
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	case nil:
		return "", ErrNoRowID
	default:
		return fmt.Sprintf("%v", id), nil
	}
}
