package hub_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"planboard/internal/hub"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startHub serves a websocket endpoint that subscribes each connection to
// the board named in the path, tagged with its X-Client-ID header.
func startHub(t *testing.T) (*hub.Hub, *httptest.Server) {
	h := hub.New()
	go h.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		boardID := strings.TrimPrefix(r.URL.Path, "/ws/boards/")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client := hub.NewClient(h, conn, boardID, r.Header.Get("X-Client-ID"))
		h.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, boardID, clientID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/boards/" + boardID
	header := http.Header{}
	header.Set("X-Client-ID", clientID)
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcast_ReachesBoardSubscribersExceptOrigin(t *testing.T) {
	// Arrange
	h, srv := startHub(t)
	origin := dial(t, srv, "b1", "origin-client")
	other := dial(t, srv, "b1", "other-client")
	elsewhere := dial(t, srv, "b2", "third-client")

	// Registration races the broadcast; give the hub a moment to settle.
	time.Sleep(100 * time.Millisecond)

	// Act
	h.Broadcast("b1", hub.Message{Type: "cardUpdate", Item: map[string]string{"id": "c1"}}, "origin-client")

	// Assert: the other b1 subscriber receives the frame
	other.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := other.ReadMessage()
	require.NoError(t, err)

	var msg hub.Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "cardUpdate", msg.Type)

	// The originating client and the b2 subscriber stay silent
	origin.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = origin.ReadMessage()
	assert.Error(t, err)

	elsewhere.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = elsewhere.ReadMessage()
	assert.Error(t, err)
}

func TestBroadcast_NoExclusionReachesEveryone(t *testing.T) {
	// Arrange
	h, srv := startHub(t)
	first := dial(t, srv, "b1", "c1")
	second := dial(t, srv, "b1", "c2")
	time.Sleep(100 * time.Millisecond)

	// Act
	h.Broadcast("b1", hub.Message{Type: "listDelete", Item: map[string]string{"id": "l1"}}, "")

	// Assert
	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg hub.Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, "listDelete", msg.Type)
	}
}
