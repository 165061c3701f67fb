// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

const realtimeRedialDelay = 5 * time.Second

// RealtimeSubscriber maintains a websocket connection to the remote change
// feed and forwards decoded [models.ChangeEvent] values to a channel. The
// feed is advisory: losing the connection never loses data, it only delays
// cache invalidation until the next sync pass.
type RealtimeSubscriber struct {
	wsURL  string
	logger *logger.Logger
}

// NewRealtimeSubscriber derives the websocket endpoint from the adapter base
// address. Returns an error if the address cannot be parsed.
func NewRealtimeSubscriber(adapterCfg config.ClientAdapter, logger *logger.Logger) (*RealtimeSubscriber, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/api/ws"
	if _, err := url.Parse(wsURL); err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}

	return &RealtimeSubscriber{wsURL: wsURL, logger: logger}, nil
}

// Run connects to the change feed and forwards events to out until ctx is
// cancelled. Connection failures are retried with a fixed delay; decode
// failures skip the frame. Run closes out on return.
func (s *RealtimeSubscriber) Run(ctx context.Context, out chan<- models.ChangeEvent) {
	defer close(out)

	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.readLoop(ctx, out); err != nil {
			s.logger.Warn().
				Err(err).
				Str("func", "RealtimeSubscriber.Run").
				Msg("change feed connection lost, redialing")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(realtimeRedialDelay):
		}
	}
}

func (s *RealtimeSubscriber) readLoop(ctx context.Context, out chan<- models.ChangeEvent) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial change feed: %w", err)
	}
	defer conn.Close()

	s.logger.Info().
		Str("func", "RealtimeSubscriber.readLoop").
		Str("url", s.wsURL).
		Msg("subscribed to change feed")

	// unblock ReadJSON when the context is cancelled
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var event models.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read change feed frame: %w", err)
		}

		select {
		case out <- event:
		case <-ctx.Done():
			return nil
		}
	}
}
