// SPDX-License-Identifier: Apache-2.0

package service

import (
	"sync"
	"time"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// LogNotifier is a [NotificationSink] that writes notifications to the log.
// It is the default sink for headless runs; hosts with a UI supply their own.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(logger *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements [NotificationSink].
func (n *LogNotifier) Notify(notification models.Notification) {
	n.logger.Info().
		Str("severity", string(notification.Severity)).
		Str("title", notification.Title).
		Msg(notification.Message)
}

// ThrottledNotifier wraps a [NotificationSink] and enforces at most one
// notification per window. The first notification in a window wins; later
// ones inside the same window are dropped silently. This keeps a flapping
// connection or a long sync from spamming the user.
type ThrottledNotifier struct {
	sink   NotificationSink
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewThrottledNotifier(sink NotificationSink, window time.Duration) *ThrottledNotifier {
	return &ThrottledNotifier{
		sink:   sink,
		window: window,
		now:    time.Now,
	}
}

// Notify implements [NotificationSink].
func (t *ThrottledNotifier) Notify(notification models.Notification) {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.window {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.sink.Notify(notification)
}
