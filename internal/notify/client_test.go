package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

// serveOver starts a websocket endpoint that streams snapshot through hub and
// dials it.
func serveOver(t *testing.T, hub *Hub, snapshot domain.OrderEvent, refresh func() (domain.OrderEvent, error)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if err = hub.Serve(conn, snapshot, refresh); err != nil {
			_ = conn.Close()
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.OrderEvent {
	t.Helper()

	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.OrderEvent
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func TestServe_SettledBeforeSubscribingClosesStream(t *testing.T) {
	hub := startHub(t)

	snapshot := domain.OrderEvent{OrderID: 11, OrderNumber: "ORD00000011", Status: domain.OrderPending}
	conn := serveOver(t, hub, snapshot, func() (domain.OrderEvent, error) {
		settled := snapshot
		settled.Status = domain.OrderCompleted
		return settled, nil
	})

	assert.Equal(t, domain.OrderPending, readEvent(t, conn).Status)
	assert.Equal(t, domain.OrderCompleted, readEvent(t, conn).Status)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestServe_UnchangedOrderKeepsStreaming(t *testing.T) {
	hub := startHub(t)

	snapshot := domain.OrderEvent{OrderID: 12, Status: domain.OrderPending}
	conn := serveOver(t, hub, snapshot, func() (domain.OrderEvent, error) {
		return snapshot, nil
	})

	assert.Equal(t, domain.OrderPending, readEvent(t, conn).Status)

	hub.Publish(domain.OrderEvent{OrderID: 12, Status: domain.OrderInProgress})
	assert.Equal(t, domain.OrderInProgress, readEvent(t, conn).Status)
}

func TestServe_TerminalSnapshotSkipsSubscription(t *testing.T) {
	hub := startHub(t)

	conn := serveOver(t, hub, domain.OrderEvent{OrderID: 13, Status: domain.OrderCancelled}, func() (domain.OrderEvent, error) {
		t.Error("settled order was re-read")
		return domain.OrderEvent{}, nil
	})

	assert.Equal(t, domain.OrderCancelled, readEvent(t, conn).Status)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
