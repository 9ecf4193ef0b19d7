package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) (*Users, *Rooms) {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db, "../../sql"))
	return NewUsers(db), NewRooms(db)
}

func TestUserCreateAndLookup(t *testing.T) {
	users, _ := testDB(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "alice_1", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.True(t, CheckPassword(u.PasswordHash, "supersecret"))
	assert.False(t, CheckPassword(u.PasswordHash, "wrong"))

	got, err := users.GetByUsername(ctx, "ALICE_1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice_1", got.Username)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDuplicateUsername(t *testing.T) {
	users, _ := testDB(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "alice", "supersecret")
	require.NoError(t, err)
	_, err = users.Create(ctx, "ALICE", "supersecret")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"ok", "alice_1", "supersecret", false},
		{"short name", "al", "supersecret", true},
		{"bad chars", "alice!", "supersecret", true},
		{"short password", "alice", "short", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSignup(tc.username, tc.password)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddExperience(t *testing.T) {
	users, _ := testDB(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "alice", "supersecret")
	require.NoError(t, err)
	require.NoError(t, users.AddExperience(ctx, u.ID, 25))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Experience)
}

func TestRoomLifecycle(t *testing.T) {
	users, rooms := testDB(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "creator", "supersecret")
	require.NoError(t, err)

	r, err := rooms.Create(ctx, u.ID, true, "", "APPLE")
	require.NoError(t, err)
	assert.Equal(t, "APPLE", r.TargetWord)

	got, err := rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPLE", got.TargetWord)
	assert.True(t, got.IsPublic)

	all, err := rooms.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, rooms.Delete(ctx, r.ID))
	_, err = rooms.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, rooms.Delete(ctx, r.ID), ErrNotFound)
}

func TestPrivateRoomRequiresPassword(t *testing.T) {
	users, rooms := testDB(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "creator", "supersecret")
	require.NoError(t, err)

	_, err = rooms.Create(ctx, u.ID, false, "", "APPLE")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	r, err := rooms.Create(ctx, u.ID, false, "hunter22", "APPLE")
	require.NoError(t, err)

	ok, err := rooms.VerifyPassword(ctx, r.ID, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = rooms.VerifyPassword(ctx, r.ID, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoomUpdate(t *testing.T) {
	users, rooms := testDB(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "creator", "supersecret")
	require.NoError(t, err)
	r, err := rooms.Create(ctx, u.ID, true, "", "APPLE")
	require.NoError(t, err)

	// Going private with no password anywhere must fail.
	private := false
	_, err = rooms.Update(ctx, r.ID, RoomUpdate{IsPublic: &private})
	assert.ErrorIs(t, err, ErrPasswordRequired)

	pw := "hunter22"
	upd, err := rooms.Update(ctx, r.ID, RoomUpdate{IsPublic: &private, Password: &pw})
	require.NoError(t, err)
	assert.False(t, upd.IsPublic)

	ok, err := rooms.VerifyPassword(ctx, r.ID, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	// Target word is immutable through updates.
	got, err := rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPLE", got.TargetWord)
}
