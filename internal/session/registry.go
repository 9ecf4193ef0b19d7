// internal/session/registry.go
//
// Process-wide mapping from room id to live Session.
// Responsibilities:
//   - Lazily create a session on first join, fetching the target word from
//     the room store exactly once per session.
//   - Tear a session down when its last player leaves (Remove is
//     idempotent).
//   - Optionally reap sessions whose players vanished without a disconnect
//     (silent network loss leaves no close event).
//
// The registry is constructor-injected into the gateway rather than being a
// package-level singleton, so independent instances never share state.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRoomNotFound is reported when the room store cannot resolve a room id.
// Store failures of any kind surface as this error; raw collaborator errors
// never escape the registry.
var ErrRoomNotFound = errors.New("room not found")

// RoomLookup resolves a room id to its stored target word. Implemented by
// the rooms store; called once per session creation.
type RoomLookup interface {
	LookupRoom(ctx context.Context, roomID string) (targetWord string, err error)
}

// RoomLookupFunc adapts a plain function to RoomLookup.
type RoomLookupFunc func(ctx context.Context, roomID string) (string, error)

func (f RoomLookupFunc) LookupRoom(ctx context.Context, roomID string) (string, error) {
	return f(ctx, roomID)
}

// Registry owns every live session in the process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	lookup   RoomLookup
}

// NewRegistry builds an empty registry backed by the given room lookup.
func NewRegistry(lookup RoomLookup) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		lookup:   lookup,
	}
}

// GetOrCreate returns the live session for roomID, creating it on first
// join. The lock is held across the lookup on the create path so the store
// is consulted exactly once per session no matter how many joins race; the
// lookup is one indexed read, so the critical section stays short.
func (r *Registry) GetOrCreate(ctx context.Context, roomID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[roomID]; ok {
		return s, nil
	}

	target, err := r.lookup.LookupRoom(ctx, roomID)
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			log.Error().Err(err).Str("room", roomID).Msg("room lookup failed")
		}
		return nil, ErrRoomNotFound
	}

	s := newSession(roomID, target)
	r.sessions[roomID] = s
	log.Info().Str("room", roomID).Msg("session created")
	return s, nil
}

// Get is a non-creating lookup.
func (r *Registry) Get(roomID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[roomID]
	return s, ok
}

// Remove deletes the session for roomID, discarding all in-memory state.
// Idempotent.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[roomID]; ok {
		delete(r.sessions, roomID)
		log.Info().Str("room", roomID).Msg("session removed")
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartJanitor reaps sessions idle for longer than ttl, checking every
// sweep interval until ctx is done. A session whose players all dropped
// without a close event would otherwise live forever.
func (r *Registry) StartJanitor(ctx context.Context, sweep, ttl time.Duration) {
	go func() {
		t := time.NewTicker(sweep)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				r.reapIdle(now, ttl)
			}
		}
	}()
}

func (r *Registry) reapIdle(now time.Time, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.IdleFor(now) > ttl {
			delete(r.sessions, id)
			log.Info().Str("room", id).Msg("idle session reaped")
		}
	}
}
