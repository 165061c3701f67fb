package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStorageUnavailable is returned when the local durable store cannot
	// be opened or migrated at all. Callers must treat this as "durability
	// degraded" and fall back to in-memory behaviour rather than crashing.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrDraftNotFound is returned when a read targets a draft id that does
	// not exist in the local store.
	ErrDraftNotFound = errors.New("draft was not found")

	// ErrQueueItemNotFound is returned when a read targets a sync queue
	// item id that does not exist in the local store.
	ErrQueueItemNotFound = errors.New("sync queue item was not found")

	// ErrCacheEntryNotFound is returned when no cache entry exists for the
	// requested key. Expiry does not produce this error; only absence does.
	ErrCacheEntryNotFound = errors.New("cache entry was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
