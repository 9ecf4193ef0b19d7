// internal/httpserver/rooms.go
//
// Room endpoints: the request/response surface used to create rooms, list
// them, and verify a room password before joining over the socket. The
// target word is chosen at creation time by the word provider and never
// leaves the server.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/wordrooms/server/internal/store"
)

type createRoomReq struct {
	IsPublic *bool  `json:"isPublic"`
	Password string `json:"password"`
}

type updateRoomReq struct {
	IsPublic *bool   `json:"isPublic"`
	Password *string `json:"password"`
}

type verifyRoomReq struct {
	Password string `json:"password"`
}

func (s *Server) mountRoomRoutes() {
	s.r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.handleListRooms)
		r.Get("/{id}", s.handleGetRoom)
		r.Post("/{id}/verify", s.handleVerifyRoom)

		r.With(s.requireAuth()).Post("/", s.handleCreateRoom)
		r.With(s.requireAuth()).Patch("/{id}", s.handleUpdateRoom)
		r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteRoom)
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list rooms")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rooms)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Room not found."}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(room)
}

// handleCreateRoom picks the target word and inserts the room. The creator
// comes from the auth context, never the body.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var body createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	target := s.words.TargetWord(r.Context())

	room, err := s.rooms.Create(r.Context(), me.ID, isPublic, body.Password, target)
	if err != nil {
		if errors.Is(err, store.ErrPasswordRequired) {
			http.Error(w, `{"error":"Private rooms require a password."}`, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("create room")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Str("room", room.ID).Str("creator", me.ID).Msg("room created")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(room)
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	id := chi.URLParam(r, "id")

	room, err := s.rooms.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Room not found."}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if me == nil || room.CreatorID != me.ID {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}

	var body updateRoomReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	updated, err := s.rooms.Update(r.Context(), id, store.RoomUpdate{
		IsPublic: body.IsPublic,
		Password: body.Password,
	})
	if err != nil {
		if errors.Is(err, store.ErrPasswordRequired) {
			http.Error(w, `{"error":"Private rooms require a password."}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(updated)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	id := chi.URLParam(r, "id")

	room, err := s.rooms.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Room not found."}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if me == nil || room.CreatorID != me.ID {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}

	if err := s.rooms.Delete(r.Context(), id); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleVerifyRoom checks a password before the client opens the socket.
func (s *Server) handleVerifyRoom(w http.ResponseWriter, r *http.Request) {
	var body verifyRoomReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	ok, err := s.rooms.VerifyPassword(r.Context(), chi.URLParam(r, "id"), body.Password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Room not found."}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"Invalid password"}`, http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
