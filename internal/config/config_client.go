package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote table service base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientSync holds the sync-engine tunables consumed by the client.
type ClientSync struct {
	BatchSize     int
	MaxRetries    int
	Debounce      time.Duration
	NotifyWindow  time.Duration
	CacheTTL      time.Duration
	ProbeInterval time.Duration
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic sync worker should run.
	SyncInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains the sync-engine tunables.
	Sync ClientSync
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the sync agent, fills unset sync tunables with the package
// defaults, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Sync: ClientSync{
			BatchSize:     cfg.Sync.BatchSize,
			MaxRetries:    cfg.Sync.MaxRetries,
			Debounce:      cfg.Sync.Debounce,
			NotifyWindow:  cfg.Sync.NotifyWindow,
			CacheTTL:      cfg.Sync.CacheTTL,
			ProbeInterval: cfg.Sync.ProbeInterval,
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

// applyDefaults fills every unset sync tunable with its package default so
// the agent can start with nothing configured beyond addresses.
func (cfg *ClientConfig) applyDefaults() {
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = DefaultBatchSize
	}
	if cfg.Sync.MaxRetries <= 0 {
		cfg.Sync.MaxRetries = DefaultMaxRetries
	}
	if cfg.Sync.Debounce <= 0 {
		cfg.Sync.Debounce = DefaultDebounce
	}
	if cfg.Sync.NotifyWindow <= 0 {
		cfg.Sync.NotifyWindow = DefaultNotifyWindow
	}
	if cfg.Sync.CacheTTL <= 0 {
		cfg.Sync.CacheTTL = DefaultCacheTTL
	}
	if cfg.Sync.ProbeInterval <= 0 {
		cfg.Sync.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
}
