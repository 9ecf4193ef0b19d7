// internal/httpserver/server.go
//
// HTTP wiring for the multiplayer word-guess backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Auth endpoints: /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - Room endpoints: list/create/get/update/delete plus password verify.
//   - The realtime endpoint: GET /ws upgrades into the game gateway.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Room mutation routes require auth; listing and verification do not,
//     matching the flow where a player checks a room password before
//     joining over the socket.

package httpserver

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wordrooms/server/internal/store"
	"github.com/wordrooms/server/internal/words"
	"github.com/wordrooms/server/internal/ws"
)

// Server bundles the router with its collaborators.
type Server struct {
	r       *chi.Mux
	users   *store.Users
	rooms   *store.Rooms
	gateway *ws.Gateway
	words   words.Provider
}

// New constructs a Server, installs middleware, and registers routes.
func New(users *store.Users, rooms *store.Rooms, gateway *ws.Gateway, provider words.Provider) *Server {
	s := &Server{r: chi.NewRouter(), users: users, rooms: rooms, gateway: gateway, words: provider}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordrooms","endpoints":["/health","/auth/*","/rooms","/ws"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountAuthRoutes()
	s.mountRoomRoutes()

	// Realtime game protocol. No request timeout middleware is mounted
	// because it would kill long-lived sockets; the socket manages its own
	// deadlines.
	s.r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(s.gateway, w, r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
