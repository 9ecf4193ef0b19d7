// internal/ws/messages.go
//
// Wire messages for the realtime game protocol. Every frame is a tagged
// JSON object; the "type" field selects the shape.
//
// Client → server: joinGame, submitGuess (disconnect is the channel close,
// not a frame).
// Server → client: gameState, playerJoined, playerLeft, gameOver, error.

package ws

import "github.com/wordrooms/server/internal/session"

// Inbound event types.
const (
	evtJoinGame    = "joinGame"
	evtSubmitGuess = "submitGuess"
)

// Outbound event types.
const (
	evtGameState    = "gameState"
	evtPlayerJoined = "playerJoined"
	evtPlayerLeft   = "playerLeft"
	evtGameOver     = "gameOver"
	evtError        = "error"
)

// envelope carries just the tag, for dispatch before full decoding.
type envelope struct {
	Type string `json:"type"`
}

type joinGameMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type submitGuessMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Guess  string `json:"guess"`
}

type gameStateMsg struct {
	Type string `json:"type"`
	session.View
}

type playerMsg struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type gameOverMsg struct {
	Type       string `json:"type"`
	Won        bool   `json:"won"`
	TargetWord string `json:"targetWord"`
}

type errorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func gameState(v session.View) gameStateMsg {
	return gameStateMsg{Type: evtGameState, View: v}
}

func playerJoined(p session.PlayerView) playerMsg {
	return playerMsg{Type: evtPlayerJoined, UserID: p.UserID, Username: p.Username}
}

func playerLeft(p session.PlayerView) playerMsg {
	return playerMsg{Type: evtPlayerLeft, UserID: p.UserID, Username: p.Username}
}

func gameOver(won bool, target string) gameOverMsg {
	return gameOverMsg{Type: evtGameOver, Won: won, TargetWord: target}
}

func errMsg(text string) errorMsg {
	return errorMsg{Type: evtError, Error: text}
}
