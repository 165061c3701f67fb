// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tilldesk/go-offline-sync/models"
)

var (
	ErrRowExists   = errors.New("row already exists")
	ErrRowNotFound = errors.New("row not found")
)

// TableStore holds opaque id-keyed JSON rows grouped into named tables, all
// in process memory. Tables are created implicitly on first insert. Row
// order within a table is insertion order.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	rows  map[string]json.RawMessage
	order []string
}

func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[string]*table)}
}

// Insert adds a new row. When the record carries no usable "id" field a
// UUID is assigned. Returns the row id, or [ErrRowExists] when the id is
// already taken.
func (s *TableStore) Insert(tableName string, record json.RawMessage) (string, error) {
	rowID, err := models.RowID(record)
	if err != nil {
		rowID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.tables[tableName]
	if !ok {
		tbl = &table{rows: make(map[string]json.RawMessage)}
		s.tables[tableName] = tbl
	}

	if _, exists := tbl.rows[rowID]; exists {
		return "", ErrRowExists
	}

	tbl.rows[rowID] = append(json.RawMessage(nil), record...)
	tbl.order = append(tbl.order, rowID)
	return rowID, nil
}

// Update replaces the row identified by rowID. Returns [ErrRowNotFound]
// when the table or row does not exist.
func (s *TableStore) Update(tableName, rowID string, record json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.tables[tableName]
	if !ok {
		return ErrRowNotFound
	}
	if _, exists := tbl.rows[rowID]; !exists {
		return ErrRowNotFound
	}

	tbl.rows[rowID] = append(json.RawMessage(nil), record...)
	return nil
}

// Delete removes the row identified by rowID. Returns [ErrRowNotFound] when
// the table or row does not exist.
func (s *TableStore) Delete(tableName, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.tables[tableName]
	if !ok {
		return ErrRowNotFound
	}
	if _, exists := tbl.rows[rowID]; !exists {
		return ErrRowNotFound
	}

	delete(tbl.rows, rowID)
	for i, id := range tbl.order {
		if id == rowID {
			tbl.order = append(tbl.order[:i], tbl.order[i+1:]...)
			break
		}
	}
	return nil
}

// Select returns every row of the table as a JSON array in insertion order.
// An unknown table yields an empty array.
func (s *TableStore) Select(tableName string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, ok := s.tables[tableName]
	if !ok {
		return json.RawMessage(`[]`), nil
	}

	rows := make([]json.RawMessage, 0, len(tbl.order))
	for _, id := range tbl.order {
		rows = append(rows, tbl.rows[id])
	}

	return json.Marshal(rows)
}
