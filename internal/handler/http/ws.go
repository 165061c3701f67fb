// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

// ChangeFeed broadcasts table mutations to websocket subscribers. Delivery
// is best effort: a subscriber that cannot be written to is dropped.
type ChangeFeed struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewChangeFeed(logger *logger.Logger) *ChangeFeed {
	return &ChangeFeed{
		upgrader: websocket.Upgrader{
			// development server: accept any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Subscribe upgrades the request to a websocket and registers it for change
// events. The connection is held until the client disconnects.
func (f *ChangeFeed) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Err(err).Msg("websocket upgrade failed")
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	subscribers := len(f.conns)
	f.mu.Unlock()

	log.Info().Int("subscribers", subscribers).Msg("change feed subscriber connected")

	// block until the peer goes away; inbound frames are discarded
	go func() {
		defer f.drop(conn)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()
}

// Broadcast sends event to every live subscriber. Writes happen under the
// feed lock because a websocket connection allows one writer at a time.
func (f *ChangeFeed) Broadcast(event models.ChangeEvent) {
	f.mu.Lock()
	var dead []*websocket.Conn
	for conn := range f.conns {
		if err := conn.WriteJSON(event); err != nil {
			f.logger.Warn().Err(err).Msg("dropping unwritable change feed subscriber")
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(f.conns, conn)
		conn.Close()
	}
	f.mu.Unlock()
}

func (f *ChangeFeed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.conns, conn)
	f.mu.Unlock()
	conn.Close()
}
