package game

import (
	"context"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/league"
)

// Repository persists the game snapshot. Implementations must make
// ReplaceLeague atomic per league: readers observe either the previous or the
// new record set, never a mix of two fetches.
type Repository interface {
	// ReplaceLeague swaps the stored record set for the league with records,
	// upserting by composite key and removing rows absent from the new fetch.
	// It also clears the league's stale flag.
	ReplaceLeague(ctx context.Context, desc league.Descriptor, records []Record) error

	// ListByLeague returns records with StartTime in [from, to), ordered by
	// StartTime. Zero bounds are open.
	ListByLeague(ctx context.Context, sport, leagueID string, from, to time.Time) ([]Record, error)

	// MarkLeagueStale flags the league without touching its records.
	MarkLeagueStale(ctx context.Context, desc league.Descriptor, reason string) error

	// LeagueStatus reports the staleness flag for one league.
	LeagueStatus(ctx context.Context, sport, leagueID string) (LeagueStatus, bool, error)
}
