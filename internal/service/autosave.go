// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/internal/store"
	"github.com/tilldesk/go-offline-sync/models"
)

// AutoSave persists work-in-progress form data as a draft, one instance per
// editing session. Saves are change-detected: a payload byte-identical to the
// last persisted snapshot is skipped entirely. The draft id is allocated on
// the first effective save and reused for the rest of the session, so the
// session always owns exactly one draft row.
type AutoSave struct {
	drafts       store.DraftRepository
	connectivity Connectivity
	notifier     NotificationSink
	logger       *logger.Logger

	entityType string
	onSaved    func(draftID string)
	now        func() time.Time

	mu           sync.Mutex
	draftID      string
	lastSnapshot []byte
}

// NewAutoSave builds an auto-save controller for one editing session of the
// given entity type. onSaved, when non-nil, is invoked with the draft id
// after every effective save.
func NewAutoSave(
	drafts store.DraftRepository,
	connectivity Connectivity,
	notifier NotificationSink,
	logger *logger.Logger,
	entityType string,
	onSaved func(draftID string),
) *AutoSave {
	return &AutoSave{
		drafts:       drafts,
		connectivity: connectivity,
		notifier:     notifier,
		logger:       logger,
		entityType:   entityType,
		onSaved:      onSaved,
		now:          time.Now,
	}
}

// Save serialises data and upserts the session draft when the payload
// differs from the last persisted snapshot. It returns true when a write
// happened. The baseline snapshot is advanced only after the write succeeds,
// so a failed save is retried in full on the next call. When the client is
// offline at save time a "saved offline" notification is emitted.
func (a *AutoSave) Save(ctx context.Context, data any) (bool, error) {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("serialize draft payload (type=%s): %w", a.entityType, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if bytes.Equal(payload, a.lastSnapshot) {
		return false, nil
	}

	now := a.now()
	draftID := a.draftID
	if draftID == "" {
		draftID = models.NewDraftID(a.entityType, now)
	}

	draft := models.Draft{
		ID:      draftID,
		Type:    a.entityType,
		Payload: payload,
		SavedAt: now,
		Synced:  false,
	}
	if err := a.drafts.SaveDraft(ctx, draft); err != nil {
		return false, fmt.Errorf("save draft (id=%s): %w", draftID, err)
	}

	a.draftID = draftID
	a.lastSnapshot = payload

	log.Debug().
		Str("func", "AutoSave.Save").
		Str("draft_id", draftID).
		Str("type", a.entityType).
		Msg("draft saved")

	if a.onSaved != nil {
		a.onSaved(draftID)
	}

	if !a.connectivity.IsOnline() {
		a.notifier.Notify(models.Notification{
			Title:    "Saved offline",
			Message:  "Draft saved locally and will sync when you're back online",
			Severity: models.SeverityInfo,
		})
	}

	return true, nil
}

// DraftID returns the id of the session draft, or an empty string before the
// first effective save.
func (a *AutoSave) DraftID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draftID
}

// ClearDraft deletes the session draft and resets the session state so the
// next Save starts a fresh draft. Clearing a session that never saved is a
// no-op.
func (a *AutoSave) ClearDraft(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.draftID != "" {
		if err := a.drafts.DeleteDraft(ctx, a.draftID); err != nil {
			return fmt.Errorf("delete draft (id=%s): %w", a.draftID, err)
		}
	}

	a.draftID = ""
	a.lastSnapshot = nil
	return nil
}
