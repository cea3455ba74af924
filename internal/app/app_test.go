package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func testConfig() *AppConfig {
	return &AppConfig{
		Host:            "127.0.0.1",
		Port:            8080,
		LogLevel:        "debug",
		Store:           StoreMemory,
		MembersLimit:    9,
		PlaylistLimit:   25,
		RoomGracePeriod: time.Minute,
		RoomTTL:         time.Hour,
		RelayTimeout:    time.Minute,
	}
}

func newTestServer(t *testing.T, cfg *AppConfig) *httptest.Server {
	t.Helper()
	logger, err := NewLogger(io.Discard, cfg.LogLevel)
	require.NoError(t, err)

	handler, cleanup, err := NewHandler(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    eventType,
		"payload": payload,
	}))
}

// readUntil skips frames until one of eventType arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == eventType {
			return f.Payload
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func runWatchParty(t *testing.T, srv *httptest.Server) {
	host := dial(t, srv)
	send(t, host, "join-room", map[string]string{"room_id": "R1", "user_id": "U1", "display_name": "alice"})

	var role struct {
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(readUntil(t, host, "role-update"), &role))
	assert.Equal(t, "host", role.Role)

	viewer := dial(t, srv)
	send(t, viewer, "join-room", map[string]string{"room_id": "R1", "user_id": "U2", "display_name": "bob"})
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, "role-update"), &role))
	assert.Equal(t, "viewer", role.Role)

	var ask struct {
		RequestId string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(readUntil(t, host, "get-current-state"), &ask))
	require.NotEmpty(t, ask.RequestId)

	send(t, host, "send-current-state", map[string]any{
		"request_id": ask.RequestId,
		"state":      map[string]any{"time": 42.5, "playing": true},
	})

	var synced struct {
		State json.RawMessage `json:"state"`
	}
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, "sync-state-on-join"), &synced))
	assert.JSONEq(t, `{"time":42.5,"playing":true}`, string(synced.State))

	// chat reaches everyone
	send(t, viewer, "send-message", map[string]string{"msg": "hello"})
	var msg struct {
		User string `json:"user"`
		Msg  string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(readUntil(t, host, "receive-message"), &msg))
	if msg.User == "System" {
		require.NoError(t, json.Unmarshal(readUntil(t, host, "receive-message"), &msg))
	}
	assert.Equal(t, "bob", msg.User)
	assert.Equal(t, "hello", msg.Msg)

	// the first playlist entry starts playing
	send(t, viewer, "add-to-playlist", map[string]string{"video_id": "dQw4w9WgXcQ", "title": "Song"})
	var title struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(readUntil(t, host, "update-title"), &title))
	assert.Equal(t, "Song", title.Title)

	// the viewer leaving updates the count
	viewer.Close()
	var userList struct {
		Count int `json:"count"`
	}
	for userList.Count != 1 {
		require.NoError(t, json.Unmarshal(readUntil(t, host, "update-user-list"), &userList))
	}
}

func TestWatchPartyMemoryStore(t *testing.T) {
	runWatchParty(t, newTestServer(t, testConfig()))
}

func TestWatchPartyRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Store = StoreRedis
	cfg.RedisHost = s.Host()
	cfg.RedisPort = port

	runWatchParty(t, newTestServer(t, cfg))
	assert.NotEmpty(t, s.Keys())
}

func TestAppConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	cfg.Store = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.Store = StoreRedis
	assert.Error(t, cfg.Validate())

	cfg.RedisHost = "localhost"
	cfg.RedisPort = 6379
	assert.NoError(t, cfg.Validate())
}
