package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skyduel/skyduel/internal/services/account"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Accounts *account.Service
	Hub      *Hub
}

// NewRouter creates the HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	handler := NewHandler(cfg.Accounts, cfg.Hub)
	watchHandler := NewWatchHandler(cfg.Hub, cfg.Logger)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recovery(cfg.Logger))
	api.Use(logging(cfg.Logger))

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/score", handler.LeaderboardScore).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/kills", handler.LeaderboardKills).Methods(http.MethodGet)
	api.HandleFunc("/matches/recent", handler.RecentMatches).Methods(http.MethodGet)
	api.HandleFunc("/watch", watchHandler.Watch).Methods(http.MethodGet)

	return r
}
