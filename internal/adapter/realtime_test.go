package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

func TestRealtimeSubscriber_Run(t *testing.T) {
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		events := []models.ChangeEvent{
			{Table: "orders", Operation: models.OperationCreate, RowID: "o1"},
			{Table: "orders", Operation: models.OperationDelete, RowID: "o2"},
		}
		for _, event := range events {
			require.NoError(t, conn.WriteJSON(event))
		}

		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sub, err := NewRealtimeSubscriber(
		config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: time.Second},
		logger.Nop(),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan models.ChangeEvent, 4)
	go sub.Run(ctx, out)

	var got []models.ChangeEvent
	timeout := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case event := <-out:
			got = append(got, event)
		case <-timeout:
			t.Fatalf("timed out waiting for change events, got %d", len(got))
		}
	}

	assert.Equal(t, "o1", got[0].RowID)
	assert.Equal(t, models.OperationDelete, got[1].Operation)

	cancel()

	// channel must close once the subscriber stops
	select {
	case _, open := <-out:
		assert.False(t, open)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestNewRealtimeSubscriber_DerivesWebsocketURL(t *testing.T) {
	sub, err := NewRealtimeSubscriber(
		config.ClientAdapter{HTTPAddress: "http://localhost:8080"},
		logger.Nop(),
	)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/ws", sub.wsURL)
}
