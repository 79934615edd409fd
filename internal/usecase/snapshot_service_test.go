package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/infrastructure/repository/memory"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
)

func TestSnapshotService_StoreLeagueNormalizesAndDropsInvalid(t *testing.T) {
	t.Parallel()

	repo := memory.NewGameRepository()
	svc := NewSnapshotService(repo, logging.NewNop())
	desc := league.Descriptor{Sport: "soccer", LeagueID: "epl", Name: "Premier League"}

	records := []game.Record{
		{ExternalGameID: "g-1", HomeTeam: "A", AwayTeam: "B", StartTime: time.Now().UTC(), Status: "finished"},
		{ExternalGameID: "", HomeTeam: "broken"},
	}

	written, err := svc.StoreLeague(context.Background(), desc, records)
	if err != nil {
		t.Fatalf("store league: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 accepted record, got=%d", written)
	}

	stored, err := svc.Games(context.Background(), "soccer", "epl", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("games: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored record, got=%d", len(stored))
	}
	if stored[0].Status != game.StatusFinished {
		t.Fatalf("expected normalized status, got=%q", stored[0].Status)
	}
	if stored[0].FetchedAt.IsZero() {
		t.Fatalf("expected fetched_at to be defaulted")
	}
}

func TestSnapshotService_StoreLeagueRejectsInvalidDescriptor(t *testing.T) {
	t.Parallel()

	svc := NewSnapshotService(memory.NewGameRepository(), logging.NewNop())

	_, err := svc.StoreLeague(context.Background(), league.Descriptor{Sport: "soccer"}, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got=%v", err)
	}
}

func TestSnapshotService_GamesValidatesRange(t *testing.T) {
	t.Parallel()

	svc := NewSnapshotService(memory.NewGameRepository(), logging.NewNop())
	now := time.Now().UTC()

	_, err := svc.Games(context.Background(), "soccer", "epl", now, now.Add(-time.Hour))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input error for inverted range, got=%v", err)
	}
}

func TestSnapshotService_StatusNotFound(t *testing.T) {
	t.Parallel()

	svc := NewSnapshotService(memory.NewGameRepository(), logging.NewNop())

	_, err := svc.Status(context.Background(), "soccer", "unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found error, got=%v", err)
	}
}
