// internal/store/rooms.go
//
// Room records: durable metadata for one game instance (creator,
// visibility, password hash, and the stored target word the live session
// reads exactly once at creation).

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordRequired is returned when a room is made private with no
// password set.
var ErrPasswordRequired = errors.New("private rooms require a password")

// Room is one room row. The target word and password hash stay
// server-side.
type Room struct {
	ID           string    `json:"id"`
	IsPublic     bool      `json:"isPublic"`
	PasswordHash string    `json:"-"`
	CreatorID    string    `json:"creatorId"`
	TargetWord   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RoomUpdate carries the PATCHable fields; nil means unchanged.
type RoomUpdate struct {
	IsPublic *bool
	Password *string
}

// Rooms wraps the rooms table.
type Rooms struct {
	db *sql.DB
}

func NewRooms(db *sql.DB) *Rooms { return &Rooms{db: db} }

// Create inserts a room with its fixed target word. Private rooms must
// carry a password, stored as a bcrypt hash.
func (s *Rooms) Create(ctx context.Context, creatorID string, isPublic bool, password, targetWord string) (*Room, error) {
	if creatorID == "" {
		return nil, errors.New("creator id is required")
	}
	if !isPublic && password == "" {
		return nil, ErrPasswordRequired
	}

	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	r := &Room{
		ID:           uuid.NewString(),
		IsPublic:     isPublic,
		PasswordHash: hash,
		CreatorID:    creatorID,
		TargetWord:   targetWord,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, is_public, password_hash, creator_id, target_word, created_at)
		 VALUES (?,?,?,?,?,?)`,
		r.ID, r.IsPublic, r.PasswordHash, r.CreatorID, r.TargetWord, r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Get loads a room by id or ErrNotFound.
func (s *Rooms) Get(ctx context.Context, id string) (*Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, is_public, password_hash, creator_id, target_word, created_at
		 FROM rooms WHERE id=?`, id)
	return scanRoom(row)
}

// List returns all rooms, newest first.
func (s *Rooms) List(ctx context.Context) ([]Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, is_public, password_hash, creator_id, target_word, created_at
		 FROM rooms ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Room{}
	for rows.Next() {
		var r Room
		var created string
		if err := rows.Scan(&r.ID, &r.IsPublic, &r.PasswordHash, &r.CreatorID, &r.TargetWord, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update patches visibility and password. Turning a room private requires
// a password, either in the patch or already stored.
func (s *Rooms) Update(ctx context.Context, id string, upd RoomUpdate) (*Room, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.IsPublic != nil {
		r.IsPublic = *upd.IsPublic
	}
	if upd.Password != nil && *upd.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		r.PasswordHash = string(h)
	}
	if !r.IsPublic && r.PasswordHash == "" {
		return nil, ErrPasswordRequired
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE rooms SET is_public=?, password_hash=? WHERE id=?`,
		r.IsPublic, r.PasswordHash, id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a room or returns ErrNotFound.
func (s *Rooms) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// VerifyPassword reports whether password opens the room. Public rooms
// without a password always verify.
func (s *Rooms) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if r.PasswordHash == "" {
		return true, nil
	}
	return CheckPassword(r.PasswordHash, password), nil
}

func scanRoom(row *sql.Row) (*Room, error) {
	var r Room
	var created string
	if err := row.Scan(&r.ID, &r.IsPublic, &r.PasswordHash, &r.CreatorID, &r.TargetWord, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &r, nil
}
