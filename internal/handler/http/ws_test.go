package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/go-offline-sync/models"
)

func TestChangeFeed_BroadcastsMutations(t *testing.T) {
	_, router := newTestHandler(t)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	token := loginToken(t, router)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/table/orders", strings.NewReader(`{"id":"o1"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var event models.ChangeEvent
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, "orders", event.Table)
	assert.Equal(t, models.OperationCreate, event.Operation)
	assert.Equal(t, "o1", event.RowID)
}
