package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	gamemock "github.com/scorelinehq/scorefeed/internal/mocks/domain/game"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestSnapshotService_StoreLeague_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	service := NewSnapshotService(gameRepo, logging.NewNop())

	desc := league.Descriptor{Sport: "soccer", LeagueID: "premier-league", Name: "Premier League"}
	records := []game.Record{
		{ExternalGameID: "g-1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", StartTime: time.Now(), Status: "scheduled"},
	}

	gameRepo.
		On("ReplaceLeague", mock.Anything, desc, mock.MatchedBy(func(v []game.Record) bool {
			return len(v) == 1 && v[0].Sport == "soccer" && v[0].Status == game.StatusScheduled
		})).
		Return(nil).
		Once()

	written, err := service.StoreLeague(ctx, desc, records)
	if err != nil {
		t.Fatalf("store league: %v", err)
	}
	if written != 1 {
		t.Fatalf("unexpected written count: got=%d want=1", written)
	}
}

func TestSnapshotService_MarkStale_PropagatesRepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	service := NewSnapshotService(gameRepo, logging.NewNop())

	desc := league.Descriptor{Sport: "soccer", LeagueID: "premier-league", Name: "Premier League"}
	repoErr := errors.New("connection reset")

	gameRepo.
		On("MarkLeagueStale", mock.Anything, desc, "upstream timeout").
		Return(repoErr).
		Once()

	err := service.MarkStale(ctx, desc, "upstream timeout")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
