package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/infrastructure/repository/memory"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/scorelinehq/scorefeed/internal/platform/retry"
	"github.com/scorelinehq/scorefeed/internal/usecase"
)

const testJobToken = "job-secret"

type fakeLeagueProvider struct {
	bySport map[string][]league.Descriptor
}

func (p *fakeLeagueProvider) ListLeagues(_ context.Context, sport string) ([]league.Descriptor, error) {
	return p.bySport[sport], nil
}

type fakeGameProvider struct {
	games map[string][]game.Record
}

func (p *fakeGameProvider) ListGames(_ context.Context, desc league.Descriptor, _, _ time.Time) ([]game.Record, error) {
	return p.games[desc.Key()], nil
}

func newTestRouter(t *testing.T) (http.Handler, *usecase.SnapshotService) {
	t.Helper()

	descriptor := league.Descriptor{
		Sport:        "soccer",
		LeagueID:     "premier-league",
		Name:         "Premier League",
		Country:      "England",
		DiscoveredAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	leagueProvider := &fakeLeagueProvider{bySport: map[string][]league.Descriptor{
		"soccer": {descriptor},
	}}
	gameProvider := &fakeGameProvider{games: map[string][]game.Record{
		"soccer/premier-league": {
			{
				ExternalGameID: "g-100",
				HomeTeam:       "Arsenal",
				AwayTeam:       "Chelsea",
				StartTime:      time.Now().UTC().Add(24 * time.Hour),
				Status:         game.StatusScheduled,
			},
		},
	}}

	catalog := usecase.NewCatalogService(leagueProvider, logging.NewNop(), usecase.CatalogConfig{
		Sports: []string{"soccer"},
		TTL:    time.Hour,
	})
	snapshot := usecase.NewSnapshotService(memory.NewGameRepository(), logging.NewNop())
	executor := retry.NewExecutor(retry.Config{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, nil, logging.NewNop())
	orchestrator := usecase.NewFetchOrchestratorService(
		catalog, snapshot, gameProvider, memory.NewCycleRepository(),
		nil, executor, nil, logging.NewNop(),
		usecase.FetchOrchestratorConfig{Concurrency: 1, CycleTimeout: time.Minute},
	)

	handler := NewHandler(catalog, snapshot, orchestrator, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"*"}, testJobToken), snapshot
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_ListLeaguesBySport(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sports/soccer/leagues", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 league, got %v", body["data"])
	}
	first := items[0].(map[string]any)
	if first["id"] != "premier-league" {
		t.Fatalf("unexpected league id: %v", first["id"])
	}
}

func TestRouter_RunCycleJobThenReadGames(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/run-cycle", strings.NewReader(`{"reason":"manual smoke"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 running cycle, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected cycle stats payload, got %v", body["data"])
	}
	if got, _ := data["leaguesSucceeded"].(float64); got != 1 {
		t.Fatalf("expected 1 succeeded league, got %v", data["leaguesSucceeded"])
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/sports/soccer/leagues/premier-league/games", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 reading games, got %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeEnvelope(t, rec)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 game, got %v", body["data"])
	}
	item := items[0].(map[string]any)
	if item["externalGameId"] != "g-100" {
		t.Fatalf("unexpected game id: %v", item["externalGameId"])
	}
}

func TestRouter_RunCycleJobRejectsMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/run-cycle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_GamesRangeValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sports/soccer/leagues/premier-league/games?from=not-a-time", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_StatusNotFoundBeforeFirstCycle(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sports/soccer/leagues/premier-league/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_LatestCycleNotFoundBeforeFirstRun(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/cycles/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
