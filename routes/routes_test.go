package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/scoreboard/analytics"
	"github.com/Dosada05/scoreboard/db"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/live"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/services"
	"github.com/Dosada05/scoreboard/utils"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type testServer struct {
	*httptest.Server
	session *services.Session
}

func newTestServer(t *testing.T, pinHash string) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), 5*time.Second)
	if err != nil {
		t.Fatalf("OpenSQLite error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn, db.DriverSQLite); err != nil {
		t.Fatalf("Migrate error = %v", err)
	}

	storage := services.NewStorageService(
		repositories.NewSQLiteMatchStateRepository(conn),
		repositories.NewSQLiteHistoryRepository(conn, repositories.HistoryLimit),
		repositories.NewSQLiteSettingsRepository(conn),
		logger,
	)
	gameTypes := services.NewGameTypeService(storage, logger)
	session := services.NewSession(services.NewRosterService(), services.NewMatchService(storage, logger), gameTypes, storage, logger)
	auth := services.NewAuthService(pinHash, "test-secret", logger)
	tracker := analytics.NewTracker(context.Background(), storage, analytics.NewSimulatedVisitors(1), logger)

	hub := live.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)
	session.Subscribe(hub.Listen)
	session.Subscribe(tracker.HandleEvent)
	storage.OnReplace(tracker.Reload)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Roster:    handlers.NewRosterHandler(session),
		Match:     handlers.NewMatchHandler(session),
		History:   handlers.NewHistoryHandler(storage, services.NewStatsService(storage)),
		GameTypes: handlers.NewGameTypeHandler(gameTypes),
		Storage:   handlers.NewStorageHandler(storage, services.NewBackupService(nil, storage, logger), session),
		Analytics: handlers.NewAnalyticsHandler(tracker),
		Auth:      handlers.NewAuthHandler(auth),
		WebSocket: handlers.NewWebSocketHandler(hub, session, []string{"*"}, logger),
	}, auth, []string{"*"}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, session: session}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal error = %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest error = %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]json.RawMessage{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func TestFullGameOverHTTP(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")

	if code, _ := srv.do(t, http.MethodPut, "/api/roster/players", map[string]any{"players": []string{"Ann", "Bob"}}, ""); code != http.StatusOK {
		t.Fatalf("set players status = %d", code)
	}
	if code, body := srv.do(t, http.MethodPost, "/api/roster/players", map[string]string{"name": "Ann"}, ""); code != http.StatusConflict {
		t.Fatalf("duplicate player status = %d, body %s", code, body["error"])
	}

	code, body := srv.do(t, http.MethodPost, "/api/match", map[string]any{"game_kind": "ping-pong", "target_score": 2}, "")
	if code != http.StatusCreated {
		t.Fatalf("start match status = %d, body %s", code, body["error"])
	}

	if code, _ := srv.do(t, http.MethodPost, "/api/match/score", map[string]int{"index": 1, "delta": -1}, ""); code != http.StatusUnprocessableEntity {
		t.Fatalf("negative score status = %d, want 422", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/match/score", map[string]int{"index": 5, "delta": 1}, ""); code != http.StatusBadRequest {
		t.Fatalf("bad index status = %d, want 400", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/match/score", map[string]int{"index": 0}, ""); code != http.StatusUnprocessableEntity {
		t.Fatalf("missing delta status = %d, want 422", code)
	}

	var update services.ScoreUpdate
	for i := 0; i < 2; i++ {
		code, body = srv.do(t, http.MethodPost, "/api/match/score", map[string]int{"index": 0, "delta": 1}, "")
		if code != http.StatusOK {
			t.Fatalf("score status = %d, body %s", code, body["error"])
		}
		if err := json.Unmarshal(body["update"], &update); err != nil {
			t.Fatalf("decode update: %v", err)
		}
	}
	if !update.Completed || update.Winner == nil || update.Winner.Name != "Ann" {
		t.Fatalf("final update = %+v", update)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/match/score", map[string]int{"index": 0, "delta": 1}, ""); code != http.StatusConflict {
		t.Fatalf("score after completion status = %d, want 409", code)
	}

	code, body = srv.do(t, http.MethodGet, "/api/history", nil, "")
	if code != http.StatusOK || string(body["count"]) != "1" {
		t.Fatalf("history status = %d, count = %s", code, body["count"])
	}

	code, body = srv.do(t, http.MethodGet, "/api/players/Ann/stats", nil, "")
	if code != http.StatusOK {
		t.Fatalf("player stats status = %d", code)
	}
	var stats struct {
		GamesWon int `json:"games_won"`
	}
	if err := json.Unmarshal(body["stats"], &stats); err != nil || stats.GamesWon != 1 {
		t.Fatalf("player stats = %s, %v", body["stats"], err)
	}

	code, body = srv.do(t, http.MethodGet, "/api/analytics", nil, "")
	if code != http.StatusOK || !strings.Contains(string(body["analytics"]), `"games_completed": 1`) {
		t.Fatalf("analytics status = %d, body %s", code, body["analytics"])
	}

	if code, _ := srv.do(t, http.MethodPost, "/api/match/new", nil, ""); code != http.StatusOK {
		t.Fatalf("new game status = %d", code)
	}
	if snap := srv.session.Snapshot(); snap.Match != nil || len(snap.Players) != 0 {
		t.Fatalf("session after new game = %+v", snap)
	}
}

func TestStartMatchRequiresReadyRoster(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")
	code, _ := srv.do(t, http.MethodPost, "/api/match", map[string]any{"game_kind": "badminton"}, "")
	if code != http.StatusBadRequest {
		t.Fatalf("start without players status = %d, want 400", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/match", map[string]any{"game_kind": "badminton", "colour": "red"}, ""); code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", code)
	}
}

func TestScorekeeperProtection(t *testing.T) {
	t.Parallel()
	hash, err := utils.HashPIN("2468")
	if err != nil {
		t.Fatalf("HashPIN error = %v", err)
	}
	srv := newTestServer(t, hash)

	if code, _ := srv.do(t, http.MethodGet, "/api/roster", nil, ""); code != http.StatusOK {
		t.Fatalf("public read status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/roster/players", map[string]string{"name": "Ann"}, ""); code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated write status = %d, want 401", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/auth/scorekeeper", map[string]string{"pin": "0000"}, ""); code != http.StatusUnauthorized {
		t.Fatalf("wrong PIN status = %d, want 401", code)
	}

	code, body := srv.do(t, http.MethodPost, "/api/auth/scorekeeper", map[string]string{"pin": "2468"}, "")
	if code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}
	var token string
	if err := json.Unmarshal(body["token"], &token); err != nil || token == "" {
		t.Fatalf("token = %s, %v", body["token"], err)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/roster/players", map[string]string{"name": "Ann"}, token); code != http.StatusCreated {
		t.Fatalf("authenticated write status = %d, want 201", code)
	}
}

func TestRosterRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")

	for _, name := range []string{"Ann", "Bob", "Cid"} {
		if code, _ := srv.do(t, http.MethodPost, "/api/roster/players", map[string]string{"name": name}, ""); code != http.StatusCreated {
			t.Fatalf("add %s status = %d", name, code)
		}
	}
	if code, _ := srv.do(t, http.MethodPut, "/api/roster/players/1", map[string]string{"name": "Bea"}, ""); code != http.StatusOK {
		t.Fatalf("rename status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodDelete, "/api/roster/players/Ann", nil, ""); code != http.StatusOK {
		t.Fatalf("remove by name status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodDelete, "/api/roster/players/index/9", nil, ""); code != http.StatusNotFound {
		t.Fatalf("remove missing index status = %d, want 404", code)
	}
	if got := srv.session.Snapshot().Players; len(got) != 2 || got[0] != "Bea" || got[1] != "Cid" {
		t.Fatalf("players = %v, want [Bea Cid]", got)
	}

	if code, _ := srv.do(t, http.MethodPut, "/api/roster/mode", map[string]string{"mode": "team"}, ""); code != http.StatusOK {
		t.Fatalf("set mode status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodPut, "/api/roster/teams/A/name", map[string]string{"name": "Reds"}, ""); code != http.StatusOK {
		t.Fatalf("team name status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/roster/teams/A/players", map[string]string{"name": "Ann"}, ""); code != http.StatusCreated {
		t.Fatalf("add member status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/roster/teams/C/players", map[string]string{"name": "Zed"}, ""); code != http.StatusBadRequest {
		t.Fatalf("unknown side status = %d, want 400", code)
	}
	if code, _ := srv.do(t, http.MethodDelete, "/api/roster/teams/A/players/Ann", nil, ""); code != http.StatusOK {
		t.Fatalf("remove member status = %d", code)
	}
}

func TestGameTypesAndStorageRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")

	if code, _ := srv.do(t, http.MethodPost, "/api/game-types", map[string]any{"name": "Darts", "default_score": 50}, ""); code != http.StatusCreated {
		t.Fatalf("create game type status = %d", code)
	}
	code, body := srv.do(t, http.MethodGet, "/api/game-types", nil, "")
	if code != http.StatusOK || !strings.Contains(string(body["game_types"]), `"darts"`) {
		t.Fatalf("list game types = %d, %s", code, body["game_types"])
	}

	if code, _ := srv.do(t, http.MethodGet, "/api/storage/info", nil, ""); code != http.StatusOK {
		t.Fatalf("storage info status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/backups", nil, ""); code != http.StatusServiceUnavailable {
		t.Fatalf("backup without R2 status = %d, want 503", code)
	}
	if code, _ := srv.do(t, http.MethodDelete, "/api/storage", nil, ""); code != http.StatusOK {
		t.Fatalf("clear storage status = %d", code)
	}
	code, body = srv.do(t, http.MethodGet, "/api/game-types", nil, "")
	if code != http.StatusOK || strings.Contains(string(body["game_types"]), `"darts"`) {
		t.Fatalf("custom game type survived ClearAll: %s", body["game_types"])
	}
}

func TestImportIgnoresInvalidMatch(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")

	backup := map[string]any{
		"current_game": map[string]any{
			"id": "zeroed",
			"participants": []map[string]any{
				{"kind": "individual", "name": "a", "members": []string{"a"}},
				{"kind": "individual", "name": "b", "members": []string{"b"}},
			},
			"scores": []int{0, 0},
			"config": map[string]any{"game_kind": "badminton"},
			"active": true,
		},
	}
	code, body := srv.do(t, http.MethodPost, "/api/storage/import", backup, "")
	if code != http.StatusOK || string(body["match_restored"]) != "false" {
		t.Fatalf("import status = %d, match_restored = %s", code, body["match_restored"])
	}
	if m := srv.session.Match(); m != nil {
		t.Fatalf("session match after import = %+v, want none", m)
	}
}

func TestClearAllResetsAnalytics(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")

	srv.do(t, http.MethodPost, "/api/analytics/visit", nil, "")
	srv.do(t, http.MethodPost, "/api/analytics/visit", nil, "")
	if code, _ := srv.do(t, http.MethodDelete, "/api/storage", nil, ""); code != http.StatusOK {
		t.Fatalf("clear storage status = %d", code)
	}
	code, body := srv.do(t, http.MethodGet, "/api/analytics", nil, "")
	if code != http.StatusOK || !strings.Contains(string(body["analytics"]), `"total_visits": 0`) {
		t.Fatalf("analytics after clear = %d, %s", code, body["analytics"])
	}
}

func TestHealthAndVisit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")
	if code, _ := srv.do(t, http.MethodGet, "/api/healthz", nil, ""); code != http.StatusNoContent {
		t.Fatalf("healthz status = %d", code)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/analytics/visit", nil, ""); code != http.StatusCreated {
		t.Fatalf("visit status = %d", code)
	}
}

func TestScoreboardWebSocket(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/scoreboard", nil)
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer conn.Close()

	read := func() live.Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg live.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON error = %v", err)
		}
		return msg
	}
	if msg := read(); msg.Type != "snapshot" {
		t.Fatalf("first message = %q, want snapshot", msg.Type)
	}
	if code, _ := srv.do(t, http.MethodPost, "/api/roster/players", map[string]string{"name": "Ann"}, ""); code != http.StatusCreated {
		t.Fatalf("add player status = %d", code)
	}
	if msg := read(); msg.Type != string(services.EventRosterUpdated) {
		t.Fatalf("message = %q, want %q", msg.Type, services.EventRosterUpdated)
	}
}
