package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
)

type GameRepository struct {
	mu             sync.RWMutex
	gamesByLeague  map[string][]game.Record
	statusByLeague map[string]game.LeagueStatus
	now            func() time.Time
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		gamesByLeague:  make(map[string][]game.Record),
		statusByLeague: make(map[string]game.LeagueStatus),
		now:            time.Now,
	}
}

func (r *GameRepository) ReplaceLeague(_ context.Context, desc league.Descriptor, records []game.Record) error {
	out := make([]game.Record, 0, len(records))
	for _, record := range records {
		record.Sport = desc.Sport
		record.LeagueID = desc.LeagueID
		record.Status = game.NormalizeStatus(record.Status)
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ExternalGameID < out[j].ExternalGameID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	r.gamesByLeague[desc.Key()] = out
	r.statusByLeague[desc.Key()] = game.LeagueStatus{
		Sport:     desc.Sport,
		LeagueID:  desc.LeagueID,
		Stale:     false,
		UpdatedAt: r.now().UTC(),
	}

	return nil
}

func (r *GameRepository) ListByLeague(_ context.Context, sport, leagueID string, from, to time.Time) ([]game.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.gamesByLeague[sport+"/"+leagueID]
	out := make([]game.Record, 0, len(items))
	for _, item := range items {
		if !from.IsZero() && item.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && !item.StartTime.Before(to) {
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

func (r *GameRepository) MarkLeagueStale(_ context.Context, desc league.Descriptor, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statusByLeague[desc.Key()] = game.LeagueStatus{
		Sport:       desc.Sport,
		LeagueID:    desc.LeagueID,
		Stale:       true,
		StaleReason: reason,
		UpdatedAt:   r.now().UTC(),
	}

	return nil
}

func (r *GameRepository) LeagueStatus(_ context.Context, sport, leagueID string) (game.LeagueStatus, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.statusByLeague[sport+"/"+leagueID]
	return status, ok, nil
}
