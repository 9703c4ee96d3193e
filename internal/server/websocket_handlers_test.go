package server

import (
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"aura/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves the test app on a loopback port and returns the ws URL.
func (e *testEnv) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.Shutdown() })
	return "ws://" + ln.Addr().String() + "/ws"
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestWebSocket_LiveMoodUpdateReachesOtherClients(t *testing.T) {
	env := newTestEnv(t)
	url := env.listen(t)

	sender := dialWS(t, url)
	listener := dialWS(t, url)
	require.Eventually(t, func() bool {
		return env.server.hub.Registry().Len() == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"live_mood_update","mood":"grateful","location":"Porto"}`)))

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := listener.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "mood_update", frame["type"])
	assert.Equal(t, "grateful", frame["mood"])
	assert.Equal(t, "Porto", frame["location"])
	assert.NotEmpty(t, frame["timestamp"])

	// The sender does not hear its own update.
	require.NoError(t, sender.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = sender.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocket_RejectsOverCapacity(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.WSMaxConnections = 1
	})
	url := env.listen(t)

	_ = dialWS(t, url)
	require.Eventually(t, func() bool {
		return env.server.hub.Registry().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	second := dialWS(t, url)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseTryAgainLater, closeErr.Code)
}

func TestPostCreationBroadcastsMoodUpdate(t *testing.T) {
	env := newTestEnv(t)
	url := env.listen(t)

	listener := dialWS(t, url)
	require.Eventually(t, func() bool {
		return env.server.hub.Registry().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp := env.do(t, http.MethodPost, "/api/posts", env.token(t, "poster"), map[string]any{
		"content":  "rain on the window",
		"mood":     "peaceful",
		"location": "Bergen",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := listener.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "mood_update", frame["type"])
	assert.Equal(t, "peaceful", frame["mood"])
}
