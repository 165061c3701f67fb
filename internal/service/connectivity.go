// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"sync"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// HealthProber is the slice of [adapter.RemoteStore] the monitor needs.
type HealthProber interface {
	Health(ctx context.Context) error
}

// ConnectivityMonitor tracks whether the remote store is reachable. The state
// is fed by two sources: a periodic health probe, and manual Set calls from
// hosts that receive platform online/offline events directly. Subscribers
// registered via OnChange are invoked on every transition; the monitor itself
// never triggers a sync, it only reports.
type ConnectivityMonitor struct {
	remote       HealthProber
	notifier     NotificationSink
	logger       *logger.Logger
	interval     time.Duration
	probeTimeout time.Duration

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const defaultProbeTimeout = 5 * time.Second

// NewConnectivityMonitor builds a monitor probing remote every interval.
// The monitor starts pessimistic (offline) until the first probe or Set.
func NewConnectivityMonitor(remote HealthProber, notifier NotificationSink, logger *logger.Logger, interval time.Duration) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		remote:       remote,
		notifier:     notifier,
		logger:       logger,
		interval:     interval,
		probeTimeout: defaultProbeTimeout,
		subs:         make(map[int]func(online bool)),
	}
}

// Start performs an initial synchronous probe to establish the startup state,
// then launches the periodic probe goroutine. It returns the initial state.
// Calling Start on a running monitor restarts it.
func (m *ConnectivityMonitor) Start(ctx context.Context) bool {
	m.Stop()

	initial := m.probe(ctx)
	m.Set(initial)

	probeCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-probeCtx.Done():
				return
			case <-t.C:
				m.Set(m.probe(probeCtx))
			}
		}
	}()

	return initial
}

// Stop cancels the probe goroutine and blocks until it exits. Safe to call
// when the monitor is not running.
func (m *ConnectivityMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// IsOnline implements [Connectivity].
func (m *ConnectivityMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a connectivity observation. On a transition it notifies the
// user (throttled by the sink) and fires every registered subscriber.
// Redundant observations are ignored.
func (m *ConnectivityMonitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	handlers := make([]func(online bool), 0, len(m.subs))
	for _, handler := range m.subs {
		handlers = append(handlers, handler)
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "ConnectivityMonitor.Set").
		Bool("online", online).
		Msg("connectivity changed")

	if online {
		m.notifier.Notify(models.Notification{
			Title:    "Back online",
			Message:  "Connection restored, syncing pending changes",
			Severity: models.SeveritySuccess,
		})
	} else {
		m.notifier.Notify(models.Notification{
			Title:    "You're offline",
			Message:  "Changes will be saved locally and synced when connection returns",
			Severity: models.SeverityWarning,
		})
	}

	// handlers run outside the lock so they may call back into the monitor
	for _, handler := range handlers {
		handler(online)
	}
}

// OnChange implements [Connectivity].
func (m *ConnectivityMonitor) OnChange(handler func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *ConnectivityMonitor) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	return m.remote.Health(probeCtx) == nil
}
