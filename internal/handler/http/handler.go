// Package http implements the HTTP surface of the development table server.
// It provides the per-table CRUD endpoints the sync agent replays against,
// a JWT login endpoint, a health probe, and a websocket change feed.
// Authentication, tracing, and logging concerns are handled at this layer
// before requests reach the table store.
package http

import (
	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
)

type Handler struct {
	tables *TableStore
	feed   *ChangeFeed
	cfg    config.Server

	logger *logger.Logger
}

func NewHandler(tables *TableStore, cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		tables: tables,
		feed:   NewChangeFeed(logger),
		cfg:    cfg,
		logger: logger,
	}
}
