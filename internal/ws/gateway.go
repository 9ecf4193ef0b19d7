// internal/ws/gateway.go
//
// Per-connection event handling for the realtime game protocol.
// Responsibilities:
//   - Track every live connection and which room it has joined.
//   - Dispatch inbound frames (joinGame, submitGuess) to the session layer
//     and turn channel closes into player removals.
//   - Fan resulting state out to every connection in the affected room.
//   - Deliver errors only to the connection that caused them.
//
// The gateway is transport-agnostic: it speaks to connections through the
// Conn interface, so tests drive it without sockets. client.go binds it to
// gorilla/websocket.

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wordrooms/server/internal/game"
	"github.com/wordrooms/server/internal/session"
)

// User-facing error strings, fixed by the protocol.
const (
	msgRoomNotFound = "Room not found."
	msgNotYourTurn  = "It is not your turn."
	msgBadGuess     = "Guess must be exactly 5 letters."
	msgGameOver     = "The game is already over."
	msgBadPayload   = "Malformed message."
)

// Conn is one live client connection. Send must not block the caller; a
// slow reader is the transport's problem, never the event path's.
type Conn interface {
	ID() string
	Send(v any)
}

// Gateway routes events between connections and the session registry.
type Gateway struct {
	registry *session.Registry

	mu     sync.Mutex
	conns  map[string]Conn   // conn id → connection
	joined map[string]string // conn id → room id, present once joined
}

// NewGateway wires a gateway to its session registry. The registry is
// injected so independent gateways (tests in particular) never share state.
func NewGateway(registry *session.Registry) *Gateway {
	return &Gateway{
		registry: registry,
		conns:    make(map[string]Conn),
		joined:   make(map[string]string),
	}
}

// Register makes a connection addressable for broadcasts. Called by the
// transport as soon as the connection is established.
func (g *Gateway) Register(c Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[c.ID()] = c
}

// HandleMessage decodes one inbound frame and applies it. Malformed frames
// and unknown tags are answered on the sender's channel only.
func (g *Gateway) HandleMessage(ctx context.Context, c Conn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("conn", c.ID()).Msg("bad frame")
		c.Send(errMsg(msgBadPayload))
		return
	}

	switch env.Type {
	case evtJoinGame:
		var m joinGameMsg
		if err := json.Unmarshal(data, &m); err != nil {
			c.Send(errMsg(msgBadPayload))
			return
		}
		g.handleJoin(ctx, c, m)
	case evtSubmitGuess:
		var m submitGuessMsg
		if err := json.Unmarshal(data, &m); err != nil {
			c.Send(errMsg(msgBadPayload))
			return
		}
		g.handleGuess(c, m)
	default:
		log.Warn().Str("conn", c.ID()).Str("type", env.Type).Msg("unknown event")
		c.Send(errMsg(msgBadPayload))
	}
}

// handleJoin resolves (or creates) the room's session and adds the player.
// A join for a user id already in the session is a reconnect and only
// rebinds that player's connection.
func (g *Gateway) handleJoin(ctx context.Context, c Conn, m joinGameMsg) {
	sess, err := g.registry.GetOrCreate(ctx, m.RoomID)
	if err != nil {
		if !errors.Is(err, session.ErrRoomNotFound) {
			log.Error().Err(err).Str("room", m.RoomID).Msg("join failed")
		}
		c.Send(errMsg(msgRoomNotFound))
		return
	}

	view, rejoined := sess.Join(m.UserID, m.Username, c.ID())

	g.mu.Lock()
	g.joined[c.ID()] = m.RoomID
	g.mu.Unlock()

	log.Info().
		Str("room", m.RoomID).
		Str("user", m.UserID).
		Bool("rejoined", rejoined).
		Msg("player joined")

	g.broadcast(sess, gameState(view))
	g.broadcast(sess, playerJoined(session.PlayerView{UserID: m.UserID, Username: m.Username}))
}

// handleGuess enforces the turn and applies the guess. All failures are
// reported to the submitter alone; the rest of the room never sees them.
func (g *Gateway) handleGuess(c Conn, m submitGuessMsg) {
	sess, ok := g.registry.Get(m.RoomID)
	if !ok {
		// No live session means this connection cannot hold the turn.
		c.Send(errMsg(msgNotYourTurn))
		return
	}

	res, err := sess.ApplyGuess(c.ID(), m.Guess)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotYourTurn):
			c.Send(errMsg(msgNotYourTurn))
		case errors.Is(err, session.ErrGameOver):
			c.Send(errMsg(msgGameOver))
		case errors.Is(err, game.ErrBadGuess):
			c.Send(errMsg(msgBadGuess))
		default:
			log.Error().Err(err).Str("room", m.RoomID).Msg("apply guess")
			c.Send(errMsg(msgBadPayload))
		}
		return
	}

	g.broadcast(sess, gameState(res.View))
	if res.GameOver {
		log.Info().Str("room", m.RoomID).Bool("won", res.Won).Msg("game over")
		g.broadcast(sess, gameOver(res.Won, res.TargetWord))
	}
}

// Disconnect handles a closed channel: the player leaves their session, and
// the session itself is torn down when it empties. Safe to call for
// connections that never joined a room.
func (g *Gateway) Disconnect(c Conn) {
	g.mu.Lock()
	roomID, wasJoined := g.joined[c.ID()]
	delete(g.joined, c.ID())
	delete(g.conns, c.ID())
	g.mu.Unlock()

	if !wasJoined {
		return
	}

	sess, ok := g.registry.Get(roomID)
	if !ok {
		return
	}

	removed, view, remaining, ok := sess.RemoveConn(c.ID())
	if !ok {
		// A stale connection closing after its player reconnected.
		return
	}

	log.Info().
		Str("room", roomID).
		Str("user", removed.UserID).
		Int("remaining", remaining).
		Msg("player left")

	if remaining == 0 {
		g.registry.Remove(roomID)
		return
	}

	g.broadcast(sess, gameState(view))
	g.broadcast(sess, playerLeft(removed))
}

// broadcast fans an event out to every connection currently joined to the
// session's room.
func (g *Gateway) broadcast(sess *session.Session, v any) {
	ids := sess.ConnIDs()

	g.mu.Lock()
	targets := make([]Conn, 0, len(ids))
	for _, id := range ids {
		if c, ok := g.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	g.mu.Unlock()

	for _, c := range targets {
		c.Send(v)
	}
}
