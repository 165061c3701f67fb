// SPDX-License-Identifier: Apache-2.0

package config

import "strings"

// validate checks the merged [StructuredConfig]. Both binaries load the same
// structured config, so cross-section rules that only one binary cares about
// live in the projected views instead; nothing is enforced here yet.
func (cfg *StructuredConfig) validate() error {
	return nil
}

// validate checks the sync-agent view. The local DSN must name a real file:
// an in-memory database would silently drop the durability the queue depends
// on, so it is rejected here and only ever used as the runtime degradation
// path.
func (cfg *ClientConfig) validate() error {
	switch {
	case cfg.Storage.DB.DSN == "", strings.Contains(cfg.Storage.DB.DSN, "memory"):
		return ErrInvalidStorageConfigs
	case cfg.Adapter.HTTPAddress == "", cfg.Adapter.RequestTimeout == 0:
		return ErrInvalidAdapterConfigs
	case cfg.Workers.SyncInterval == 0:
		return ErrInvalidWorkerConfigs
	}

	return nil
}
