package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tilldesk/go-offline-sync/models"
)

// stubConnectivity is a hand-rolled Connectivity with a settable state.
type stubConnectivity struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

func newStubConnectivity(online bool) *stubConnectivity {
	return &stubConnectivity{online: online, subs: make(map[int]func(online bool))}
}

func (c *stubConnectivity) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *stubConnectivity) OnChange(handler func(online bool)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *stubConnectivity) set(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	handlers := make([]func(online bool), 0, len(c.subs))
	for _, handler := range c.subs {
		handlers = append(handlers, handler)
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(online)
	}
}

// spySink records every notification it receives.
type spySink struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (s *spySink) Notify(notification models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification)
}

func (s *spySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

func (s *spySink) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.notifications))
	for _, n := range s.notifications {
		titles = append(titles, n.Title)
	}
	return titles
}

// fakeRemote implements adapter.RemoteStore with overridable behaviour and
// call counters.
type fakeRemote struct {
	mu    sync.Mutex
	token string

	insertFn func(ctx context.Context, table string, record json.RawMessage) error
	updateFn func(ctx context.Context, table, rowID string, record json.RawMessage) error
	deleteFn func(ctx context.Context, table, rowID string) error
	selectFn func(ctx context.Context, table string) (json.RawMessage, error)
	healthFn func(ctx context.Context) error

	inserts int
	updates int
	deletes int
}

func (f *fakeRemote) SetToken(token string) { f.mu.Lock(); f.token = token; f.mu.Unlock() }

func (f *fakeRemote) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeRemote) Login(ctx context.Context, user models.User) error { return nil }

func (f *fakeRemote) Insert(ctx context.Context, table string, record json.RawMessage) error {
	f.mu.Lock()
	f.inserts++
	f.mu.Unlock()
	if f.insertFn != nil {
		return f.insertFn(ctx, table, record)
	}
	return nil
}

func (f *fakeRemote) Update(ctx context.Context, table, rowID string, record json.RawMessage) error {
	f.mu.Lock()
	f.updates++
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(ctx, table, rowID, record)
	}
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, table, rowID string) error {
	f.mu.Lock()
	f.deletes++
	f.mu.Unlock()
	if f.deleteFn != nil {
		return f.deleteFn(ctx, table, rowID)
	}
	return nil
}

func (f *fakeRemote) Select(ctx context.Context, table, query string) (json.RawMessage, error) {
	if f.selectFn != nil {
		return f.selectFn(ctx, table)
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeRemote) Health(ctx context.Context) error {
	if f.healthFn != nil {
		return f.healthFn(ctx)
	}
	return nil
}

func (f *fakeRemote) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts
}
