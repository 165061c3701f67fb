// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// Defaults applied by [GetClientConfig] to sync tunables left unset by every
// configuration source.
const (
	DefaultBatchSize     = 10
	DefaultMaxRetries    = 5
	DefaultDebounce      = 2 * time.Second
	DefaultNotifyWindow  = 5 * time.Second
	DefaultCacheTTL      = 5 * time.Minute
	DefaultProbeInterval = 15 * time.Second
	DefaultSyncInterval  = 5 * time.Minute
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging values from environment
// variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings shared by both binaries.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the local durable store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address, timeout and token settings for the
	// development table server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds settings for the outbound remote store client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds the sync-engine tunables (batch size, retry cap,
	// debounce and notification windows, cache TTL, connectivity probe).
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds background worker settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values shared by the agent and
// the development server.
type App struct {
	// HashKey is the HMAC key used for transport payload integrity
	// checking. When empty, no integrity hash is attached to requests.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage holds settings for the local durable store.
type Storage struct {
	// DB holds the SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path backing the drafts, sync queue, and
	// cache collections (e.g. "/var/lib/tilldesk/offline.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network and token settings for the development table server.
type Server struct {
	// HTTPAddress is the TCP address the server listens on, "host:port".
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request (e.g. "30s").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// TokenSignKey is the secret used to sign and verify bearer tokens.
	// Env: SERVER_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: SERVER_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long an issued token remains valid.
	// Env: SERVER_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Adapter holds settings for the outbound remote store client.
type Adapter struct {
	// HTTPAddress is the base URL of the remote table service.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the per-request timeout applied by the HTTP
	// transport. The sync engine imposes no additional per-call timeout.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the sync-engine and cache tunables.
type Sync struct {
	// BatchSize is the number of queue items processed concurrently per
	// batch during a sync pass.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// MaxRetries is the retry cap after which a queue item is dropped
	// permanently.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// Debounce is the window within which non-forced sync triggers
	// coalesce into a single pass.
	// Env: SYNC_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`

	// NotifyWindow is the minimum gap between user-facing notifications.
	// Env: SYNC_NOTIFY_WINDOW
	NotifyWindow time.Duration `env:"NOTIFY_WINDOW"`

	// CacheTTL is the default freshness window for cache entries.
	// Env: SYNC_CACHE_TTL
	CacheTTL time.Duration `env:"CACHE_TTL"`

	// ProbeInterval is how often the connectivity monitor probes the
	// remote health endpoint.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval defines how often the periodic sync worker forces a
	// full queue drain as a safety net against missed triggers.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
