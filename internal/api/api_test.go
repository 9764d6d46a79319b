package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyduel/skyduel/internal/api"
	"github.com/skyduel/skyduel/internal/factory"
)

// testServer bundles the router with the app it was built from
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Accounts: app.Accounts,
		Hub:      app.Hub,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/health")
	assert.Equal(t, http.StatusOK, rr.Code)

	body := decode[map[string]any](t, rr)
	assert.Equal(t, "ok", body["status"])
}

func TestLeaderboards(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, ts.app.Accounts.Register(ctx, "alice", "a@example.com", "hunter22"))
	require.NoError(t, ts.app.Accounts.Register(ctx, "bob", "b@example.com", "hunter22"))
	require.NoError(t, ts.app.Accounts.RecordResult(ctx, "alice", "bob"))
	require.NoError(t, ts.app.Accounts.RecordResult(ctx, "alice", "bob"))

	rr := ts.get("/api/leaderboard/score")
	require.Equal(t, http.StatusOK, rr.Code)

	type entry struct {
		Username string `json:"username"`
		Value    int    `json:"value"`
	}
	scores := decode[[]entry](t, rr)
	require.Len(t, scores, 1)
	assert.Equal(t, "alice", scores[0].Username)
	assert.Equal(t, 6, scores[0].Value)

	rr = ts.get("/api/leaderboard/kills")
	require.Equal(t, http.StatusOK, rr.Code)
	kills := decode[[]entry](t, rr)
	require.Len(t, kills, 1)
	assert.Equal(t, "alice", kills[0].Username)
	assert.Equal(t, 2, kills[0].Value)
}

func TestRecentMatches(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, ts.app.Accounts.RecordResult(ctx, "alice", "bob"))
	require.NoError(t, ts.app.Accounts.RecordResult(ctx, "bob", "alice"))

	rr := ts.get("/api/matches/recent")
	require.Equal(t, http.StatusOK, rr.Code)

	type record struct {
		Winner string `json:"winner"`
		Loser  string `json:"loser"`
	}
	records := decode[[]record](t, rr)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, "bob", records[0].Winner)
	assert.Equal(t, "alice", records[1].Winner)
}

func TestLimitParamClamped(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/leaderboard/score?limit=0")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.get("/api/leaderboard/score?limit=weird")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHubFanout(t *testing.T) {
	hub := api.NewHub(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.MatchStarted("alice", "bob")
	event := <-ch
	assert.Equal(t, "match_started", event.Type)
	assert.Equal(t, []string{"alice", "bob"}, event.Players)

	hub.MatchEnded("alice", "bob", false)
	event = <-ch
	assert.Equal(t, "match_ended", event.Type)
	assert.Equal(t, "alice", event.Winner)
	assert.Equal(t, "bob", event.Loser)
}
