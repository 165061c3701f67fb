// SPDX-License-Identifier: Apache-2.0

// Package adapter provides transport-layer abstractions for communicating with
// the remote table store.
//
// The primary abstraction is [RemoteStore], which decouples the sync engine
// and cache layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteStore]) plus an optional websocket change-feed
// subscriber ([NewRealtimeSubscriber]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/tilldesk/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore defines transport-agnostic communication with the remote table
// store. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel values
// defined in this package.
type RemoteStore interface {
	// SetToken stores the bearer token that will be attached to all subsequent
	// authenticated requests. It should be called immediately after a
	// successful Login.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Login authenticates with the remote store using the provided
	// credentials. On success it stores the returned bearer token via
	// SetToken. Returns an error if the request fails or the server responds
	// with a non-2xx status.
	Login(ctx context.Context, user models.User) error

	// Insert creates a new row in the named table from the raw JSON record.
	// Returns [ErrConflict] (wrapped) if a row with the same id already
	// exists, or another error if the request fails.
	Insert(ctx context.Context, table string, record json.RawMessage) error

	// Update replaces the row identified by rowID in the named table with the
	// raw JSON record. Returns [ErrNotFound] (wrapped) if the row does not
	// exist, or another error if the request fails.
	Update(ctx context.Context, table string, rowID string, record json.RawMessage) error

	// Delete removes the row identified by rowID from the named table.
	// Deleting a row that does not exist is treated as success, so replays of
	// an already-applied delete converge instead of failing.
	Delete(ctx context.Context, table string, rowID string) error

	// Select fetches rows of the named table as a raw JSON array. query is an
	// optional URL query string filter forwarded verbatim ("status=open");
	// empty selects all rows. Returns an error if the request fails or the
	// response cannot be decoded.
	Select(ctx context.Context, table string, query string) (json.RawMessage, error)

	// Health probes the remote store availability endpoint. A nil return
	// means the store answered within the request timeout.
	Health(ctx context.Context) error
}
