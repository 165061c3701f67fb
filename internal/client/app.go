// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tilldesk/go-offline-sync/internal/adapter"
	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/internal/service"
	"github.com/tilldesk/go-offline-sync/internal/store"
	"github.com/tilldesk/go-offline-sync/internal/workers"
	"github.com/tilldesk/go-offline-sync/models"
)

// App owns the wired sync subsystem and its process lifecycle. Everything is
// constructed explicitly in NewApp; there are no package globals.
type App struct {
	cfg      *config.ClientConfig
	logger   *logger.Logger
	storages *store.Storages
	remote   adapter.RemoteStore
	services *service.Services
	realtime *adapter.RealtimeSubscriber
	workers  *workers.Workers

	wg sync.WaitGroup
}

// NewApp builds the full client object graph from configuration. A failed
// SQLite open degrades to in-memory collections with a warning instead of
// aborting startup.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		if !errors.Is(err, store.ErrStorageUnavailable) {
			return nil, fmt.Errorf("create storages: %w", err)
		}
		log.Warn().Err(err).Msg("running with in-memory storage, local changes will not survive restarts")
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create remote store: %w", err)
	}

	realtime, err := adapter.NewRealtimeSubscriber(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("create realtime subscriber: %w", err)
	}

	sink := service.NewLogNotifier(log)
	services := service.NewServices(storages, remote, sink, log, cfg.Sync)

	return &App{
		cfg:      cfg,
		logger:   log,
		storages: storages,
		remote:   remote,
		services: services,
		realtime: realtime,
	}, nil
}

// Run starts connectivity probing, the sync engine, the realtime change feed
// and background workers, then blocks until ctx is cancelled. Shutdown is
// performed before returning.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	online := a.services.Connectivity.Start(runCtx)
	a.logger.Info().
		Str("func", "App.Run").
		Bool("online", online).
		Bool("durable", a.storages.Durable).
		Msg("sync agent starting")

	if online {
		a.login(runCtx)
	}

	a.services.Sync.Start(runCtx)

	events := make(chan models.ChangeEvent)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.realtime.Run(runCtx, events)
	}()
	go func() {
		defer a.wg.Done()
		a.services.InvalidateOnChange(runCtx, events, a.logger)
	}()

	a.workers = workers.NewWorkers(runCtx, a.services.Sync, a.logger, a.cfg.Workers.SyncInterval)
	a.workers.Run()

	<-ctx.Done()
	a.logger.Info().Str("func", "App.Run").Msg("shutdown signal received")

	a.workers.Stop()
	a.services.Sync.Close()
	a.services.Connectivity.Stop()
	cancel()
	a.wg.Wait()

	a.logger.Info().Str("func", "App.Run").Msg("sync agent stopped")
	return nil
}

// login authenticates against the remote table service using credentials
// from the environment. Missing credentials or a failed login leave the
// agent in anonymous mode; queued work stays local until a token is issued.
func (a *App) login(ctx context.Context) {
	user := models.User{
		Login:    os.Getenv("SYNC_LOGIN"),
		Password: os.Getenv("SYNC_PASSWORD"),
	}
	if user.Login == "" || user.Password == "" {
		a.logger.Debug().Str("func", "App.login").Msg("no credentials in environment, skipping login")
		return
	}

	if err := a.remote.Login(ctx, user); err != nil {
		a.logger.Warn().Err(err).Str("func", "App.login").Msg("remote login failed, continuing offline-first")
		return
	}

	a.logger.Info().Str("func", "App.login").Str("login", user.Login).Msg("authenticated against remote")
}
