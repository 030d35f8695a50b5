package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/service-marketplace/internal/config"
)

func testRealtimeConfig() config.RealtimeConfig {
	return config.RealtimeConfig{
		SendBuffer:      16,
		EventsPerSecond: 1000,
		Burst:           1000,
		MaxMessageBytes: 64 * 1024,
		PongWait:        5 * time.Second,
	}
}

func newTestServer(t *testing.T, cfg config.RealtimeConfig) (*Server, *Registry, *Metrics, string) {
	t.Helper()

	reg := NewRegistry()
	metrics := NewMetrics()
	srv := NewServer(reg, NewRouter(reg, metrics, discardLogger()), metrics, cfg, discardLogger())

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return srv, reg, metrics, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestServerChatOverWebsocket(t *testing.T) {
	_, reg, metrics, url := newTestServer(t, testRealtimeConfig())

	first := dial(t, url+"?firstname=Ana&lastname=Rojas")
	second := dial(t, url+"?firstname=Luis&lastname=Perez")
	waitFor(t, func() bool { return reg.Len() == 2 })
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.connections))

	require.NoError(t, first.WriteJSON(frame(KindJoinChat, `{"chat":"chat-42"}`)))
	require.NoError(t, second.WriteJSON(frame(KindJoinChat, `{"chat":"chat-42"}`)))
	waitFor(t, func() bool { return len(reg.Members("chat-42")) == 2 })

	require.NoError(t, second.WriteJSON(frame(KindChatMessage, `{"chat":"chat-42","text":"hi"}`)))

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Frame
	require.NoError(t, first.ReadJSON(&got))
	assert.Equal(t, KindChatMessage, got.Event)
	assert.JSONEq(t, `{"chat":"chat-42","text":"hi"}`, string(got.Data))

	// Отправитель своё сообщение не получает.
	require.NoError(t, second.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestServerMalformedFrameKeepsSession(t *testing.T) {
	_, reg, _, url := newTestServer(t, testRealtimeConfig())

	ws := dial(t, url)
	waitFor(t, func() bool { return reg.Len() == 1 })

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	require.NoError(t, ws.WriteJSON(frame("unknown-kind", `{}`)))
	require.NoError(t, ws.WriteJSON(frame(KindJoinChat, `{"chat":"c-1"}`)))

	waitFor(t, func() bool { return len(reg.Members("c-1")) == 1 })
}

func TestServerDisconnectCleansRegistry(t *testing.T) {
	_, reg, metrics, url := newTestServer(t, testRealtimeConfig())

	ws := dial(t, url)
	require.NoError(t, ws.WriteJSON(frame(KindRegisterUserChannel, `{"user_id":"u-1"}`)))
	waitFor(t, func() bool { return len(reg.Members("u-1")) == 1 })

	require.NoError(t, ws.Close())

	waitFor(t, func() bool { return reg.Len() == 0 })
	assert.Empty(t, reg.Members("u-1"))
	waitFor(t, func() bool { return testutil.ToFloat64(metrics.connections) == 0 })
}

func TestServerRateLimit(t *testing.T) {
	cfg := testRealtimeConfig()
	cfg.EventsPerSecond = 0.001
	cfg.Burst = 1
	_, reg, metrics, url := newTestServer(t, cfg)

	ws := dial(t, url)
	require.NoError(t, ws.WriteJSON(frame(KindJoinChat, `{"chat":"a"}`)))
	require.NoError(t, ws.WriteJSON(frame(KindJoinChat, `{"chat":"b"}`)))

	waitFor(t, func() bool {
		return testutil.ToFloat64(metrics.dropped.WithLabelValues(DropRateLimited)) == 1
	})
	waitFor(t, func() bool { return len(reg.Members("a")) == 1 })
	assert.Empty(t, reg.Members("b"))
}

func TestServerShutdownClosesConnections(t *testing.T) {
	srv, reg, _, url := newTestServer(t, testRealtimeConfig())

	ws := dial(t, url)
	waitFor(t, func() bool { return reg.Len() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Equal(t, 0, reg.Len())

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	_, _, err = websocket.DefaultDialer.Dial(url, nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
}
