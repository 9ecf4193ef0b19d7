package httpserver

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
)

// End-to-end over a real socket: join, guess, win. Gateway unit tests cover
// the protocol edge cases; this pins the upgrade path and the pumps.
func TestWebsocketGameFlow(t *testing.T) {
	s := testServer(t)
	cookies := signup(t, s, "alice")

	rec := doJSON(t, s, http.MethodPost, "/rooms", map[string]any{"isPublic": true}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code)
	var room struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))

	httpSrv := httptest.NewServer(s.Router())
	defer httpSrv.Close()
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readEvent := func() map[string]any {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "joinGame", "roomId": room.ID, "userId": "u1", "username": "alice",
	}))

	state := readEvent()
	require.Equal(t, "gameState", state["type"])
	assert.Equal(t, "alice", state["currentPlayer"])
	assert.Equal(t, float64(0), state["currentRow"])

	joined := readEvent()
	require.Equal(t, "playerJoined", joined["type"])
	assert.Equal(t, "alice", joined["username"])

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "submitGuess", "roomId": room.ID, "guess": "apple",
	}))

	state = readEvent()
	require.Equal(t, "gameState", state["type"])
	assert.Equal(t, true, state["gameOver"])
	assert.Equal(t, true, state["won"])

	over := readEvent()
	require.Equal(t, "gameOver", over["type"])
	assert.Equal(t, true, over["won"])
	assert.Equal(t, "APPLE", over["targetWord"])
}

func TestWebsocketUnknownRoom(t *testing.T) {
	s := testServer(t)

	httpSrv := httptest.NewServer(s.Router())
	defer httpSrv.Close()
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "joinGame", "roomId": "ghost", "userId": "u1", "username": "alice",
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m map[string]any
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, "error", m["type"])
	assert.Equal(t, "Room not found.", m["error"])
}
