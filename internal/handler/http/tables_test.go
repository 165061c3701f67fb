package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableStore_InsertAndSelect(t *testing.T) {
	tables := NewTableStore()

	rowID, err := tables.Insert("orders", json.RawMessage(`{"id":"o1","total":10}`))
	require.NoError(t, err)
	assert.Equal(t, "o1", rowID)

	_, err = tables.Insert("orders", json.RawMessage(`{"id":"o2","total":20}`))
	require.NoError(t, err)

	rows, err := tables.Select("orders")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1","total":10},{"id":"o2","total":20}]`, string(rows))
}

func TestTableStore_InsertWithoutIDAssignsOne(t *testing.T) {
	tables := NewTableStore()

	rowID, err := tables.Insert("orders", json.RawMessage(`{"total":10}`))
	require.NoError(t, err)
	assert.NotEmpty(t, rowID)
}

func TestTableStore_InsertConflict(t *testing.T) {
	tables := NewTableStore()

	_, err := tables.Insert("orders", json.RawMessage(`{"id":"o1"}`))
	require.NoError(t, err)

	_, err = tables.Insert("orders", json.RawMessage(`{"id":"o1"}`))
	assert.ErrorIs(t, err, ErrRowExists)
}

func TestTableStore_Update(t *testing.T) {
	tables := NewTableStore()

	_, err := tables.Insert("orders", json.RawMessage(`{"id":"o1","total":10}`))
	require.NoError(t, err)

	require.NoError(t, tables.Update("orders", "o1", json.RawMessage(`{"id":"o1","total":99}`)))

	rows, err := tables.Select("orders")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1","total":99}]`, string(rows))

	assert.ErrorIs(t, tables.Update("orders", "missing", json.RawMessage(`{}`)), ErrRowNotFound)
	assert.ErrorIs(t, tables.Update("unknown", "o1", json.RawMessage(`{}`)), ErrRowNotFound)
}

func TestTableStore_Delete(t *testing.T) {
	tables := NewTableStore()

	_, err := tables.Insert("orders", json.RawMessage(`{"id":"o1"}`))
	require.NoError(t, err)

	require.NoError(t, tables.Delete("orders", "o1"))
	assert.ErrorIs(t, tables.Delete("orders", "o1"), ErrRowNotFound)

	rows, err := tables.Select("orders")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(rows))
}

func TestTableStore_SelectUnknownTable(t *testing.T) {
	tables := NewTableStore()

	rows, err := tables.Select("nope")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(rows))
}
