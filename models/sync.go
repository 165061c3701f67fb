package models

// SyncStatus is the sync-state snapshot exposed to UI collaborators.
type SyncStatus struct {
	// IsOnline reflects the last known connectivity state.
	IsOnline bool `json:"is_online"`

	// IsSyncing is true while a sync pass is in flight.
	IsSyncing bool `json:"is_syncing"`

	// PendingCount is the number of queue items awaiting replay.
	PendingCount int `json:"pending_count"`
}

// SyncSummary aggregates the outcome of a single sync pass. Per-item errors
// never cross the engine boundary; only these counts do.
type SyncSummary struct {
	// Synced counts items replayed successfully and removed from the queue.
	Synced int `json:"synced"`

	// Failed counts items whose replay failed and which remain queued with
	// an incremented retry counter.
	Failed int `json:"failed"`

	// Dropped counts items removed permanently after exhausting their
	// retry limit.
	Dropped int `json:"dropped"`
}

// ChangeEvent describes one row mutation broadcast on the remote change feed.
type ChangeEvent struct {
	// Table names the remote collection the change belongs to.
	Table string `json:"table"`

	// Operation is the mutation kind applied remotely.
	Operation Operation `json:"operation"`

	// RowID identifies the affected row.
	RowID string `json:"row_id"`
}
