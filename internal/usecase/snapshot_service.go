package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/scorelinehq/scorefeed/internal/platform/resilience"
)

// SnapshotService owns writes to the game snapshot. A keyed mutex serializes
// writers per league so two cycles can never interleave one league's replace.
type SnapshotService struct {
	games  game.Repository
	logger *logging.Logger
	locks  *resilience.KeyedMutex
	now    func() time.Time
}

func NewSnapshotService(games game.Repository, logger *logging.Logger) *SnapshotService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SnapshotService{
		games:  games,
		logger: logger,
		locks:  resilience.NewKeyedMutex(),
		now:    time.Now,
	}
}

// StoreLeague replaces one league's snapshot with records from a successful
// fetch. Records are normalized and validated before the write; invalid ones
// are dropped rather than failing the whole league.
func (s *SnapshotService) StoreLeague(ctx context.Context, desc league.Descriptor, records []game.Record) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.StoreLeague")
	defer span.End()

	if s.games == nil {
		return 0, fmt.Errorf("%w: game repository is not configured", ErrDependencyUnavailable)
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	accepted := make([]game.Record, 0, len(records))
	for _, record := range records {
		if strings.TrimSpace(record.ExternalGameID) == "" {
			s.logger.WarnContext(ctx, "dropping game record without external id",
				"sport", desc.Sport,
				"league_id", desc.LeagueID,
			)
			continue
		}
		record.Sport = desc.Sport
		record.LeagueID = desc.LeagueID
		record.Status = game.NormalizeStatus(record.Status)
		if record.FetchedAt.IsZero() {
			record.FetchedAt = s.now().UTC()
		}
		accepted = append(accepted, record)
	}

	s.locks.Lock(desc.Key())
	defer s.locks.Unlock(desc.Key())

	if err := s.games.ReplaceLeague(ctx, desc, accepted); err != nil {
		return 0, fmt.Errorf("replace league snapshot %s: %w", desc.Key(), err)
	}

	return len(accepted), nil
}

// MarkStale flags one league's snapshot after a failed fetch. The records
// themselves stay untouched so readers keep the last known good data.
func (s *SnapshotService) MarkStale(ctx context.Context, desc league.Descriptor, reason string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.MarkStale")
	defer span.End()

	if s.games == nil {
		return fmt.Errorf("%w: game repository is not configured", ErrDependencyUnavailable)
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.locks.Lock(desc.Key())
	defer s.locks.Unlock(desc.Key())

	if err := s.games.MarkLeagueStale(ctx, desc, reason); err != nil {
		return fmt.Errorf("mark league stale %s: %w", desc.Key(), err)
	}

	return nil
}

// Games returns one league's records with StartTime in [from, to).
func (s *SnapshotService) Games(ctx context.Context, sport, leagueID string, from, to time.Time) ([]game.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Games")
	defer span.End()

	sport = strings.ToLower(strings.TrimSpace(sport))
	leagueID = strings.TrimSpace(leagueID)
	if sport == "" || leagueID == "" {
		return nil, fmt.Errorf("%w: sport and league id are required", ErrInvalidInput)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	records, err := s.games.ListByLeague(ctx, sport, leagueID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list league games %s/%s: %w", sport, leagueID, err)
	}

	return records, nil
}

// UpcomingGames returns games starting within the next horizon.
func (s *SnapshotService) UpcomingGames(ctx context.Context, sport, leagueID string, horizon time.Duration) ([]game.Record, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive", ErrInvalidInput)
	}

	now := s.now().UTC()
	return s.Games(ctx, sport, leagueID, now, now.Add(horizon))
}

// Status reports one league's staleness flag.
func (s *SnapshotService) Status(ctx context.Context, sport, leagueID string) (game.LeagueStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Status")
	defer span.End()

	sport = strings.ToLower(strings.TrimSpace(sport))
	leagueID = strings.TrimSpace(leagueID)
	if sport == "" || leagueID == "" {
		return game.LeagueStatus{}, fmt.Errorf("%w: sport and league id are required", ErrInvalidInput)
	}

	status, ok, err := s.games.LeagueStatus(ctx, sport, leagueID)
	if err != nil {
		return game.LeagueStatus{}, fmt.Errorf("league status %s/%s: %w", sport, leagueID, err)
	}
	if !ok {
		return game.LeagueStatus{}, fmt.Errorf("%w: league %s/%s has no snapshot", ErrNotFound, sport, leagueID)
	}

	return status, nil
}
