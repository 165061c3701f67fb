// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

func (h *Handler) insertRow(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	tableName := chi.URLParam(r, "table")

	record, ok := readRecord(w, r)
	if !ok {
		return
	}

	rowID, err := h.tables.Insert(tableName, record)
	if err != nil {
		if errors.Is(err, ErrRowExists) {
			log.Warn().Str("table", tableName).Msg("insert conflict")
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Err(err).Str("table", tableName).Msg("insert failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.feed.Broadcast(models.ChangeEvent{Table: tableName, Operation: models.OperationCreate, RowID: rowID})
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) updateRow(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	tableName := chi.URLParam(r, "table")
	rowID := chi.URLParam(r, "id")

	record, ok := readRecord(w, r)
	if !ok {
		return
	}

	if err := h.tables.Update(tableName, rowID, record); err != nil {
		if errors.Is(err, ErrRowNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Err(err).Str("table", tableName).Str("row_id", rowID).Msg("update failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.feed.Broadcast(models.ChangeEvent{Table: tableName, Operation: models.OperationUpdate, RowID: rowID})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) deleteRow(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	tableName := chi.URLParam(r, "table")
	rowID := chi.URLParam(r, "id")

	if err := h.tables.Delete(tableName, rowID); err != nil {
		if errors.Is(err, ErrRowNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Err(err).Str("table", tableName).Str("row_id", rowID).Msg("delete failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.feed.Broadcast(models.ChangeEvent{Table: tableName, Operation: models.OperationDelete, RowID: rowID})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) selectRows(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	tableName := chi.URLParam(r, "table")

	rows, err := h.tables.Select(tableName)
	if err != nil {
		log.Err(err).Str("table", tableName).Msg("select failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(rows)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// readRecord reads and validates the request body as a single JSON object.
// On failure it writes the error response and returns ok=false.
func readRecord(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	if !json.Valid(body) {
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return nil, false
	}
	return json.RawMessage(body), true
}
