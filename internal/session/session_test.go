package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordrooms/server/internal/game"
)

func twoPlayerSession(t *testing.T, target string) *Session {
	t.Helper()
	s := newSession("room-1", target)
	s.Join("u1", "alice", "c1")
	s.Join("u2", "bob", "c2")
	return s
}

func TestJoinOrderSetsRotation(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")
	v := s.View()
	require.Len(t, v.Players, 2)
	assert.Equal(t, "alice", v.Players[0].Username)
	assert.Equal(t, "bob", v.Players[1].Username)
	assert.Equal(t, "alice", v.CurrentPlayer)
	assert.Equal(t, 0, v.CurrentRow)
	assert.False(t, v.GameOver)
}

func TestRejoinIsIdempotent(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")

	// Advance the turn to bob so a reconnect can't be mistaken for a reset.
	_, err := s.ApplyGuess("c1", "FLAME")
	require.NoError(t, err)

	v, rejoined := s.Join("u1", "alice", "c1-new")
	assert.True(t, rejoined)
	assert.Len(t, v.Players, 2)
	assert.Equal(t, "alice", v.Players[0].Username)
	assert.Equal(t, "bob", v.CurrentPlayer)

	// The new connection owns alice's turn slot once rotation comes back.
	_, err = s.ApplyGuess("c2", "FLAME")
	require.NoError(t, err)
	_, err = s.ApplyGuess("c1", "FLAME")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = s.ApplyGuess("c1-new", "FLAME")
	assert.NoError(t, err)
}

func TestTurnRotation(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")
	s.Join("u3", "carol", "c3")

	expect := []string{"c1", "c2", "c3", "c1", "c2"}
	for i, conn := range expect {
		res, err := s.ApplyGuess(conn, "STORM")
		require.NoError(t, err, "guess %d", i)
		assert.Equal(t, i+1, res.View.CurrentRow)
		assert.False(t, res.GameOver)
	}
}

func TestGuessOutOfTurn(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")

	before := s.View()
	_, err := s.ApplyGuess("c2", "FLAME")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, before, s.View())
}

func TestBadGuessLengthRejectedBeforeMutation(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")

	before := s.View()
	_, err := s.ApplyGuess("c1", "CAT")
	assert.ErrorIs(t, err, game.ErrBadGuess)
	assert.Equal(t, before, s.View())
}

func TestWinningGuessEndsGame(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")

	res, err := s.ApplyGuess("c1", "apple")
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.True(t, res.Won)
	assert.Equal(t, "APPLE", res.TargetWord)
	// Terminal guesses do not advance the row or the turn.
	assert.Equal(t, 0, res.View.CurrentRow)
	for _, c := range res.View.Guesses[0] {
		assert.Equal(t, game.StatusCorrect, c.Status)
	}

	_, err = s.ApplyGuess("c2", "FLAME")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestSixthWrongGuessLosesGame(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")

	conns := []string{"c1", "c2", "c1", "c2", "c1"}
	for _, conn := range conns {
		res, err := s.ApplyGuess(conn, "STORM")
		require.NoError(t, err)
		require.False(t, res.GameOver)
	}

	res, err := s.ApplyGuess("c2", "STORM")
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.False(t, res.Won)
	assert.Equal(t, "APPLE", res.TargetWord)
	assert.Equal(t, game.Rows-1, res.View.CurrentRow)
}

func TestRowsBeyondCurrentStayEmpty(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")
	res, err := s.ApplyGuess("c1", "STORM")
	require.NoError(t, err)

	for r := res.View.CurrentRow; r < game.Rows; r++ {
		for _, c := range res.View.Guesses[r] {
			assert.Equal(t, game.StatusEmpty, c.Status)
		}
	}
}

func TestRemoveConnClampsTurn(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")
	s.Join("u3", "carol", "c3")

	// Rotate to carol, then remove her: the stale index must clamp to 0.
	_, err := s.ApplyGuess("c1", "STORM")
	require.NoError(t, err)
	_, err = s.ApplyGuess("c2", "STORM")
	require.NoError(t, err)

	removed, view, remaining, ok := s.RemoveConn("c3")
	require.True(t, ok)
	assert.Equal(t, "carol", removed.Username)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, "alice", view.CurrentPlayer)

	_, err = s.ApplyGuess("c1", "STORM")
	assert.NoError(t, err)
}

func TestRemoveConnUnknownConnection(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")
	_, _, remaining, ok := s.RemoveConn("c-stale")
	assert.False(t, ok)
	assert.Equal(t, 2, remaining)
	assert.Len(t, s.View().Players, 2)
}

func TestStaleConnRemovalAfterReconnect(t *testing.T) {
	s := twoPlayerSession(t, "APPLE")
	s.Join("u1", "alice", "c1-new")

	// The old connection's close event must not evict the reconnected player.
	_, _, remaining, ok := s.RemoveConn("c1")
	assert.False(t, ok)
	assert.Equal(t, 2, remaining)
}
