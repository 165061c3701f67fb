// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/migrations"
)

// DB wraps the SQLite connection shared by the collection repositories.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate brings the local schema up to date. Safe to call on every start:
// applied migrations are skipped.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
