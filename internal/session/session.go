// internal/session/session.go
//
// Authoritative in-memory state for one live game room.
// Responsibilities:
//   - Track players in join order (join order = turn rotation).
//   - Own the 6x5 guess grid, row pointer, and turn pointer.
//   - Apply guesses through the scorer and drive the playing → over
//     transition.
//   - Handle reconnects idempotently on user id and removals on
//     connection id.
//
// Notes:
//   - Go schedules handlers across goroutines, so every session carries its
//     own mutex; all events for one room serialize on it. Sessions share no
//     state with each other.

package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wordrooms/server/internal/game"
)

var (
	// ErrNotYourTurn is returned for a guess from any connection other
	// than the one holding the turn.
	ErrNotYourTurn = errors.New("it is not your turn")

	// ErrGameOver is returned for guesses after the game has ended.
	ErrGameOver = errors.New("game is already over")
)

// Player is one participant. Identity is UserID; ConnID is the current live
// connection and is replaced on reconnect.
type Player struct {
	UserID   string
	Username string
	ConnID   string
}

// Session holds the live state of one room's game. Mutate only through its
// methods; every method takes the session lock.
type Session struct {
	mu sync.Mutex

	roomID     string
	targetWord string // fixed at creation, uppercase

	players      []Player
	grid         [][]game.Cell // game.Rows rows of game.WordLen cells
	currentRow   int
	currentTurn  int // index into players
	gameOver     bool
	won          bool
	lastActivity time.Time
}

func newSession(roomID, targetWord string) *Session {
	grid := make([][]game.Cell, game.Rows)
	for i := range grid {
		grid[i] = game.EmptyRow()
	}
	return &Session{
		roomID:       roomID,
		targetWord:   targetWord,
		grid:         grid,
		lastActivity: time.Now(),
	}
}

// PlayerView is the public slice of a player (no connection id).
type PlayerView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// View is the full shared state broadcast to every connection in the room
// after each join, guess, and removal.
type View struct {
	Players       []PlayerView  `json:"players"`
	Guesses       [][]game.Cell `json:"guesses"`
	CurrentRow    int           `json:"currentRow"`
	CurrentPlayer string        `json:"currentPlayer"`
	GameOver      bool          `json:"gameOver"`
	Won           bool          `json:"won"`
}

// GuessResult bundles the post-guess view with the terminal outcome. The
// target word is revealed only once the game is over.
type GuessResult struct {
	View       View
	GameOver   bool
	Won        bool
	TargetWord string
}

// Join adds the player to the back of the rotation, or, if a player with
// the same user id is already present, treats the call as a reconnect and
// only swaps the connection id in place. Reconnects never grow the player
// list or disturb the turn pointer.
func (s *Session) Join(userID, username, connID string) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()

	for i := range s.players {
		if s.players[i].UserID == userID {
			s.players[i].ConnID = connID
			return s.viewLocked(), true
		}
	}
	s.players = append(s.players, Player{UserID: userID, Username: username, ConnID: connID})
	return s.viewLocked(), false
}

// ApplyGuess validates the turn, scores the guess, writes the row, and
// advances row and turn unless the guess ended the game.
//
// Turn enforcement is by connection id: the submitting connection must be
// the live connection of the player at the turn pointer. Failures return
// before any state changes.
func (s *Session) ApplyGuess(connID, guess string) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return GuessResult{}, ErrGameOver
	}
	if len(s.players) == 0 || s.players[s.currentTurn].ConnID != connID {
		return GuessResult{}, ErrNotYourTurn
	}

	row, won, err := game.Score(guess, s.targetWord)
	if err != nil {
		return GuessResult{}, err
	}
	s.lastActivity = time.Now()

	s.grid[s.currentRow] = row
	s.won = won

	if won || s.currentRow == game.Rows-1 {
		s.gameOver = true
	} else {
		s.currentRow++
		s.currentTurn = (s.currentTurn + 1) % len(s.players)
	}

	res := GuessResult{View: s.viewLocked(), GameOver: s.gameOver, Won: s.won}
	if s.gameOver {
		res.TargetWord = s.targetWord
	}
	return res, nil
}

// RemoveConn drops the player whose live connection is connID. Reports the
// removed player, the post-removal view, and how many players remain; a
// stale turn pointer is re-clamped to 0. ok is false when no player owns
// connID (e.g. an old connection closing after a reconnect).
func (s *Session) RemoveConn(connID string) (removed PlayerView, view View, remaining int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.players {
		if s.players[i].ConnID == connID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return PlayerView{}, View{}, len(s.players), false
	}

	p := s.players[idx]
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	if s.currentTurn >= len(s.players) {
		s.currentTurn = 0
	}
	s.lastActivity = time.Now()

	return PlayerView{UserID: p.UserID, Username: p.Username}, s.viewLocked(), len(s.players), true
}

// View returns a snapshot of the shared state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// ConnIDs lists the live connection ids of every joined player, in turn
// order. The gateway fans broadcasts out over this list.
func (s *Session) ConnIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.players))
	for i, p := range s.players {
		ids[i] = p.ConnID
	}
	return ids
}

// IdleFor reports how long ago the session last saw an event.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

func (s *Session) viewLocked() View {
	players := make([]PlayerView, len(s.players))
	for i, p := range s.players {
		players[i] = PlayerView{UserID: p.UserID, Username: p.Username}
	}
	guesses := make([][]game.Cell, len(s.grid))
	for i, row := range s.grid {
		guesses[i] = append([]game.Cell(nil), row...)
	}
	current := ""
	if len(s.players) > 0 {
		current = s.players[s.currentTurn].Username
	}
	return View{
		Players:       players,
		Guesses:       guesses,
		CurrentRow:    s.currentRow,
		CurrentPlayer: current,
		GameOver:      s.gameOver,
		Won:           s.won,
	}
}
