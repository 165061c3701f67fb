package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectQueueQuery(t *testing.T) {
	query, args, err := buildSelectQueueQuery()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM sync_queue")
	assert.Contains(t, query, "ORDER BY enqueued_at ASC, id ASC")
	assert.Empty(t, args)
}

func TestBuildDeleteExhaustedQuery(t *testing.T) {
	query, args, err := buildDeleteExhaustedQuery(5)
	require.NoError(t, err)

	assert.Contains(t, query, "DELETE FROM sync_queue")
	assert.Contains(t, query, "retries >= ?")
	assert.Equal(t, []any{5}, args)
}

func TestBuildDeleteQueueItemsQuery(t *testing.T) {
	query, args, err := buildDeleteQueueItemsQuery([]string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Contains(t, query, "DELETE FROM sync_queue")
	assert.Contains(t, query, "id IN (?,?,?)")
	assert.Equal(t, []any{"a", "b", "c"}, args)
}
