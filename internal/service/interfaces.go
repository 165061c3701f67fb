// SPDX-License-Identifier: Apache-2.0

// Package service contains the offline-first sync subsystem: the cache layer,
// the auto-save controller, the sync engine, the connectivity monitor, and the
// notification policy. Services depend on the repository interfaces from
// internal/store and on [adapter.RemoteStore]; they never touch SQL or HTTP
// directly.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tilldesk/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// FetchFunc loads a fresh value from the remote source. Implementations are
// usually closures over [adapter.RemoteStore].Select.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// CacheResult is the outcome of a cache read.
type CacheResult struct {
	// Value is the returned payload, either freshly fetched or served from
	// the local cache.
	Value json.RawMessage

	// IsCached is true when Value came from the local cache rather than a
	// successful fetch in this call.
	IsCached bool

	// Refreshed carries the result of a background refresh started by this
	// read. It is nil when no refresh was started; otherwise it yields at
	// most one value and is then closed.
	Refreshed <-chan json.RawMessage
}

// CacheService is the read-through cache over remote fetches. Reads follow
// the availability ladder: fresh cache first, then the network, then stale
// cache, and only then an error.
type CacheService interface {
	// Read resolves key using the cached entry and fetch. The exact contract:
	//
	//  1. A fresh cached entry is returned immediately; when online a
	//     background refresh is started and surfaced via Refreshed.
	//  2. No usable entry and online: fetch is called, the result stored
	//     under key and returned.
	//  3. The fetch failed but any entry exists (fresh or expired): the
	//     cached value is returned, IsCached set.
	//  4. Offline with no entry: [ErrNoCachedDataOffline].
	//
	// Entries written by this call expire after ttl; a non-positive ttl
	// selects the configured default.
	Read(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) (CacheResult, error)

	// Invalidate removes the entry stored under key. Invalidating an absent
	// key is not an error.
	Invalidate(ctx context.Context, key string) error
}

// Connectivity exposes the current online state and change subscriptions.
// Implemented by [ConnectivityMonitor]; consumed by the sync engine, the
// cache layer, and auto-save.
type Connectivity interface {
	// IsOnline reports the last observed connectivity state.
	IsOnline() bool

	// OnChange registers handler to be invoked on every online/offline
	// transition. The returned function unregisters the handler.
	OnChange(handler func(online bool)) (unsubscribe func())
}

// NotificationSink receives user-facing notifications. Delivery is
// fire-and-forget; a sink must never block the caller.
type NotificationSink interface {
	Notify(notification models.Notification)
}
