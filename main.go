package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordrooms/server/internal/httpserver"
	"github.com/wordrooms/server/internal/session"
	"github.com/wordrooms/server/internal/store"
	"github.com/wordrooms/server/internal/words"
	"github.com/wordrooms/server/internal/ws"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := store.Open(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := store.Migrate(db, "sql"); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	users := store.NewUsers(db)
	rooms := store.NewRooms(db)
	provider := words.NewAPIProvider(os.Getenv("WORD_API_URL"))

	// The live-session registry reads the target word from the rooms table
	// once per session; a missing row is the room-not-found condition.
	registry := session.NewRegistry(session.RoomLookupFunc(
		func(ctx context.Context, roomID string) (string, error) {
			r, err := rooms.Get(ctx, roomID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return "", session.ErrRoomNotFound
				}
				return "", err
			}
			return r.TargetWord, nil
		}))
	registry.StartJanitor(context.Background(), 5*time.Minute, idleTTL())

	gateway := ws.NewGateway(registry)
	srv := httpserver.New(users, rooms, gateway, provider)

	port := getEnv("PORT", "6790")
	log.Info().Str("port", port).Msg("starting wordrooms server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// idleTTL reads SESSION_IDLE_TTL (Go duration, default 24h). Sessions whose
// players vanished without a disconnect are reaped after this long.
func idleTTL() time.Duration {
	if v := os.Getenv("SESSION_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Warn().Str("value", v).Msg("bad SESSION_IDLE_TTL, using default")
	}
	return 24 * time.Hour
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
