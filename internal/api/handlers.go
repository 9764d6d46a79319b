package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/services/account"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Handler serves the read-only REST endpoints
type Handler struct {
	accounts *account.Service
	hub      *Hub
}

// NewHandler creates a new REST handler
func NewHandler(accounts *account.Service, hub *Hub) *Handler {
	return &Handler{
		accounts: accounts,
		hub:      hub,
	}
}

type leaderboardEntry struct {
	Username string `json:"username"`
	Value    int    `json:"value"`
}

type matchRecord struct {
	Winner   string    `json:"winner"`
	Loser    string    `json:"loser"`
	PlayedAt time.Time `json:"played_at"`
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"observers": h.hub.SubscriberCount(),
	})
}

// LeaderboardScore handles GET /api/leaderboard/score
func (h *Handler) LeaderboardScore(w http.ResponseWriter, r *http.Request) {
	entries, err := h.accounts.TopByScore(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboard(entries))
}

// LeaderboardKills handles GET /api/leaderboard/kills
func (h *Handler) LeaderboardKills(w http.ResponseWriter, r *http.Request) {
	entries, err := h.accounts.TopByKills(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboard(entries))
}

// RecentMatches handles GET /api/matches/recent
func (h *Handler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	records, err := h.accounts.RecentMatches(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "match history unavailable")
		return
	}

	out := make([]matchRecord, len(records))
	for i, rec := range records {
		out[i] = matchRecord{
			Winner:   string(rec.Winner),
			Loser:    string(rec.Loser),
			PlayedAt: rec.PlayedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func toLeaderboard(entries []model.ScoreEntry) []leaderboardEntry {
	out := make([]leaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = leaderboardEntry{Username: e.Username, Value: e.Score}
	}
	return out
}

// limitParam parses the optional ?limit= query parameter
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
