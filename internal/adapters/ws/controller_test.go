package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livegate/livegate/internal/room"
)

func newTestServer(t *testing.T) (*httptest.Server, *room.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := room.NewHub()
	ctl := NewController(hub, 0)

	r := gin.New()
	r.GET("/ws/:channel", func(c *gin.Context) {
		ctl.HandleChannel(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestConnectReceivesSnapshotThenCount(t *testing.T) {
	srv, hub := newTestServer(t)
	conn := dial(t, srv, "/ws/room1?role=viewer&name=Ann")

	first := readFrame(t, conn)
	assert.Equal(t, "connected", first["type"])
	assert.NotEmpty(t, first["sessionId"])
	assert.Equal(t, float64(1), first["viewerCount"])

	second := readFrame(t, conn)
	assert.Equal(t, "viewer_count", second["type"])
	assert.Equal(t, float64(1), second["count"])

	rm, ok := hub.Peek("room1")
	require.True(t, ok)
	assert.Equal(t, 1, rm.Count())
}

func TestChatAndPingOverSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "/ws/room1") // defaults: viewer, Anonymous
	readFrame(t, conn)                // connected
	readFrame(t, conn)                // viewer_count

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","text":"hi"}`)))
	chat := readFrame(t, conn)
	assert.Equal(t, "chat", chat["type"])
	assert.Equal(t, "Anonymous", chat["from"])
	assert.Equal(t, "viewer", chat["role"])
	assert.Equal(t, "hi", chat["text"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	pong := readFrame(t, conn)
	assert.Equal(t, "pong", pong["type"])
}

func TestNormalCloseRemovesSession(t *testing.T) {
	srv, hub := newTestServer(t)
	conn := dial(t, srv, "/ws/room1?role=viewer")
	readFrame(t, conn)
	readFrame(t, conn)

	rm, ok := hub.Peek("room1")
	require.True(t, ok)
	require.Equal(t, 1, rm.Count())

	deadline := time.Now().Add(time.Second)
	require.NoError(t, conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline))

	require.Eventually(t, func() bool { return rm.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
