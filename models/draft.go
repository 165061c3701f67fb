package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Draft is a locally persisted snapshot of an in-progress entity.
// Drafts never leave the device: they exist so a half-filled invoice or
// order survives a page reload or an application restart. Each editing
// session owns exactly one draft and overwrites it in place on every change.
type Draft struct {
	// ID uniquely identifies the draft within the local store.
	// Generated as "{type}-{unix-milli}" when not supplied by the caller.
	ID string `json:"id"`

	// Type tags the logical entity kind being edited (e.g. "invoice", "order").
	Type string `json:"type"`

	// Payload is the serialized entity as last seen by the editor.
	Payload json.RawMessage `json:"payload"`

	// SavedAt is the time of the last write.
	SavedAt time.Time `json:"saved_at"`

	// Synced is reserved for future remote-draft reconciliation.
	// It is always written false and never read back for control flow.
	Synced bool `json:"synced"`
}

// NewDraftID builds a draft identifier from the entity type and the current
// clock.
func NewDraftID(entityType string, now time.Time) string {
	return fmt.Sprintf("%s-%d", entityType, now.UnixMilli())
}
