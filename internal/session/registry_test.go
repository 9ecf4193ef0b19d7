package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	calls  int
	target string
	err    error
}

func (c *countingLookup) LookupRoom(ctx context.Context, roomID string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.target, nil
}

func TestGetOrCreateLooksUpOnce(t *testing.T) {
	lookup := &countingLookup{target: "APPLE"}
	r := NewRegistry(lookup)

	ctx := context.Background()
	s1, err := r.GetOrCreate(ctx, "room-1")
	require.NoError(t, err)
	s2, err := r.GetOrCreate(ctx, "room-1")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, lookup.calls)
	assert.Equal(t, 1, r.Len())
}

func TestGetOrCreateRoomNotFound(t *testing.T) {
	r := NewRegistry(&countingLookup{err: ErrRoomNotFound})

	_, err := r.GetOrCreate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestGetOrCreateWrapsStoreFailures(t *testing.T) {
	// A broken store must surface as RoomNotFound, never as a raw error.
	r := NewRegistry(&countingLookup{err: errors.New("db locked")})

	_, err := r.GetOrCreate(context.Background(), "room-1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGetIsNonCreating(t *testing.T) {
	lookup := &countingLookup{target: "APPLE"}
	r := NewRegistry(lookup)

	_, ok := r.Get("room-1")
	assert.False(t, ok)
	assert.Equal(t, 0, lookup.calls)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(&countingLookup{target: "APPLE"})
	_, err := r.GetOrCreate(context.Background(), "room-1")
	require.NoError(t, err)

	r.Remove("room-1")
	r.Remove("room-1")
	assert.Equal(t, 0, r.Len())
}

func TestRecreateAfterRemoveIsFresh(t *testing.T) {
	lookup := &countingLookup{target: "APPLE"}
	r := NewRegistry(lookup)
	ctx := context.Background()

	s, err := r.GetOrCreate(ctx, "room-1")
	require.NoError(t, err)
	s.Join("u1", "alice", "c1")
	_, err = s.ApplyGuess("c1", "STORM")
	require.NoError(t, err)

	r.Remove("room-1")

	fresh, err := r.GetOrCreate(ctx, "room-1")
	require.NoError(t, err)
	assert.NotSame(t, s, fresh)
	assert.Equal(t, 2, lookup.calls)
	assert.Equal(t, 0, fresh.View().CurrentRow)
	assert.Empty(t, fresh.View().Players)
}

func TestReapIdle(t *testing.T) {
	r := NewRegistry(&countingLookup{target: "APPLE"})
	ctx := context.Background()

	_, err := r.GetOrCreate(ctx, "stale")
	require.NoError(t, err)
	busy, err := r.GetOrCreate(ctx, "busy")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	busy.Join("u1", "alice", "c1") // refreshes activity

	r.reapIdle(time.Now(), 10*time.Millisecond)

	_, ok := r.Get("stale")
	assert.False(t, ok)
	_, ok = r.Get("busy")
	assert.True(t, ok)
}
