package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/scorelinehq/scorefeed/internal/domain/cycle"
	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/scorelinehq/scorefeed/internal/usecase"
)

const defaultUpcomingHorizon = 7 * 24 * time.Hour

type Handler struct {
	catalogService  *usecase.CatalogService
	snapshotService *usecase.SnapshotService
	orchestrator    *usecase.FetchOrchestratorService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	catalogService *usecase.CatalogService,
	snapshotService *usecase.SnapshotService,
	orchestrator *usecase.FetchOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		catalogService:  catalogService,
		snapshotService: snapshotService,
		orchestrator:    orchestrator,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.catalogService.AllLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListLeaguesBySport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeaguesBySport")
	defer span.End()

	sport := r.PathValue("sport")
	leagues, err := h.catalogService.Leagues(ctx, sport)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues by sport failed", "sport", sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListGamesByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGamesByLeague")
	defer span.End()

	sport := r.PathValue("sport")
	leagueID := r.PathValue("leagueID")

	from, to, err := parseTimeRange(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var records []game.Record
	if from.IsZero() && to.IsZero() {
		records, err = h.snapshotService.UpcomingGames(ctx, sport, leagueID, defaultUpcomingHorizon)
	} else {
		records, err = h.snapshotService.Games(ctx, sport, leagueID, from, to)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "sport", sport, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, gameToDTO(rec))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeagueStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStatus")
	defer span.End()

	sport := r.PathValue("sport")
	leagueID := r.PathValue("leagueID")

	status, err := h.snapshotService.Status(ctx, sport, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league status failed", "sport", sport, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueStatusToDTO(status))
}

func (h *Handler) GetLatestCycle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestCycle")
	defer span.End()

	stats, err := h.orchestrator.LatestCycle(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cycleToDTO(stats))
}

func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCycles")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	cycles, err := h.orchestrator.ListCycles(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]cycleDTO, 0, len(cycles))
	for _, stats := range cycles {
		items = append(items, cycleToDTO(stats))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPipelineStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPipelineStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.orchestrator.Counters())
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339", usecase.ErrInvalidInput, name)
	}
	return parsed, nil
}

type leagueDTO struct {
	Sport        string `json:"sport"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country,omitempty"`
	Season       string `json:"season,omitempty"`
	DiscoveredAt string `json:"discoveredAt"`
}

type gameDTO struct {
	Sport          string `json:"sport"`
	LeagueID       string `json:"leagueId"`
	ExternalGameID string `json:"externalGameId"`
	HomeTeam       string `json:"homeTeam"`
	AwayTeam       string `json:"awayTeam"`
	StartTime      string `json:"startTime"`
	Status         string `json:"status"`
	HomeScore      *int   `json:"homeScore,omitempty"`
	AwayScore      *int   `json:"awayScore,omitempty"`
	FetchedAt      string `json:"fetchedAt"`
}

type leagueStatusDTO struct {
	Sport       string `json:"sport"`
	LeagueID    string `json:"leagueId"`
	Stale       bool   `json:"stale"`
	StaleReason string `json:"staleReason,omitempty"`
	UpdatedAt   string `json:"updatedAt"`
}

type cycleDTO struct {
	CycleID           string                `json:"cycleId"`
	StartedAt         string                `json:"startedAt"`
	EndedAt           string                `json:"endedAt"`
	DurationMS        int64                 `json:"durationMs"`
	LeaguesAttempted  int                   `json:"leaguesAttempted"`
	LeaguesSucceeded  int                   `json:"leaguesSucceeded"`
	LeaguesFailed     []cycle.LeagueFailure `json:"leaguesFailed"`
	TotalGamesWritten int                   `json:"totalGamesWritten"`
}

func leagueToDTO(v league.Descriptor) leagueDTO {
	return leagueDTO{
		Sport:        v.Sport,
		ID:           v.LeagueID,
		Name:         v.Name,
		Country:      v.Country,
		Season:       v.Season,
		DiscoveredAt: v.DiscoveredAt.UTC().Format(time.RFC3339),
	}
}

func gameToDTO(v game.Record) gameDTO {
	return gameDTO{
		Sport:          v.Sport,
		LeagueID:       v.LeagueID,
		ExternalGameID: v.ExternalGameID,
		HomeTeam:       v.HomeTeam,
		AwayTeam:       v.AwayTeam,
		StartTime:      v.StartTime.UTC().Format(time.RFC3339),
		Status:         v.Status,
		HomeScore:      v.HomeScore,
		AwayScore:      v.AwayScore,
		FetchedAt:      v.FetchedAt.UTC().Format(time.RFC3339),
	}
}

func leagueStatusToDTO(v game.LeagueStatus) leagueStatusDTO {
	return leagueStatusDTO{
		Sport:       v.Sport,
		LeagueID:    v.LeagueID,
		Stale:       v.Stale,
		StaleReason: v.StaleReason,
		UpdatedAt:   v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func cycleToDTO(v cycle.Stats) cycleDTO {
	failures := v.LeaguesFailed
	if failures == nil {
		failures = []cycle.LeagueFailure{}
	}

	return cycleDTO{
		CycleID:           v.CycleID,
		StartedAt:         v.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:           v.EndedAt.UTC().Format(time.RFC3339),
		DurationMS:        v.Duration().Milliseconds(),
		LeaguesAttempted:  v.LeaguesAttempted,
		LeaguesSucceeded:  v.LeaguesSucceeded,
		LeaguesFailed:     failures,
		TotalGamesWritten: v.TotalGamesWritten,
	}
}
