package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	qb "github.com/scorelinehq/scorefeed/internal/platform/querybuilder"
)

const upsertGameRecordSuffix = `ON CONFLICT (sport, league_id, external_game_id) DO UPDATE SET
	home_team = EXCLUDED.home_team,
	away_team = EXCLUDED.away_team,
	start_time = EXCLUDED.start_time,
	status = EXCLUDED.status,
	home_score = EXCLUDED.home_score,
	away_score = EXCLUDED.away_score,
	raw_payload = EXCLUDED.raw_payload,
	fetched_at = EXCLUDED.fetched_at,
	updated_at = NOW()`

const upsertLeagueStatusSuffix = `ON CONFLICT (sport, league_id) DO UPDATE SET
	league_name = EXCLUDED.league_name,
	stale = EXCLUDED.stale,
	stale_reason = EXCLUDED.stale_reason,
	updated_at = NOW()`

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// ReplaceLeague swaps one league's record set inside a single transaction so
// concurrent readers see either the old set or the new one.
func (r *GameRepository) ReplaceLeague(ctx context.Context, desc league.Descriptor, records []game.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace league games: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	keep := make([]any, 0, len(records))
	for _, record := range records {
		insertModel := gameRecordInsertModel{
			Sport:          desc.Sport,
			LeagueID:       desc.LeagueID,
			ExternalGameID: record.ExternalGameID,
			HomeTeam:       record.HomeTeam,
			AwayTeam:       record.AwayTeam,
			StartTime:      record.StartTime.UTC(),
			Status:         game.NormalizeStatus(record.Status),
			HomeScore:      intPtrToNullInt64(record.HomeScore),
			AwayScore:      intPtrToNullInt64(record.AwayScore),
			RawPayload:     record.RawPayload,
			FetchedAt:      record.FetchedAt.UTC(),
		}

		query, args, err := qb.InsertModel("game_records", insertModel, upsertGameRecordSuffix)
		if err != nil {
			return fmt.Errorf("build upsert game record query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert game record %s: %w", record.ExternalGameID, err)
		}

		keep = append(keep, record.ExternalGameID)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("game_records").
		Where(
			qb.Eq("sport", desc.Sport),
			qb.Eq("league_id", desc.LeagueID),
			qb.NotIn("external_game_id", keep),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete absent game records query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete absent game records: %w", err)
	}

	statusModel := leagueStatusInsertModel{
		Sport:      desc.Sport,
		LeagueID:   desc.LeagueID,
		LeagueName: desc.Name,
		Stale:      false,
	}
	statusQuery, statusArgs, err := qb.InsertModel("league_status", statusModel, upsertLeagueStatusSuffix)
	if err != nil {
		return fmt.Errorf("build upsert league status query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, statusQuery, statusArgs...); err != nil {
		return fmt.Errorf("upsert league status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace league games tx: %w", err)
	}

	return nil
}

func (r *GameRepository) ListByLeague(ctx context.Context, sport, leagueID string, from, to time.Time) ([]game.Record, error) {
	conditions := []qb.Condition{
		qb.Eq("sport", sport),
		qb.Eq("league_id", leagueID),
	}
	if !from.IsZero() {
		conditions = append(conditions, qb.Gte("start_time", from.UTC()))
	}
	if !to.IsZero() {
		conditions = append(conditions, qb.Lt("start_time", to.UTC()))
	}

	query, args, err := qb.Select(
		"sport",
		"league_id",
		"external_game_id",
		"home_team",
		"away_team",
		"start_time",
		"status",
		"home_score",
		"away_score",
		"raw_payload",
		"fetched_at",
	).From("game_records").
		Where(conditions...).
		OrderBy("start_time", "external_game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game records query: %w", err)
	}

	var rows []gameRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select game records: %w", err)
	}

	out := make([]game.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, game.Record{
			Sport:          row.Sport,
			LeagueID:       row.LeagueID,
			ExternalGameID: row.ExternalGameID,
			HomeTeam:       row.HomeTeam,
			AwayTeam:       row.AwayTeam,
			StartTime:      row.StartTime,
			Status:         row.Status,
			HomeScore:      nullInt64ToIntPtr(row.HomeScore),
			AwayScore:      nullInt64ToIntPtr(row.AwayScore),
			RawPayload:     row.RawPayload,
			FetchedAt:      row.FetchedAt,
		})
	}

	return out, nil
}

func (r *GameRepository) MarkLeagueStale(ctx context.Context, desc league.Descriptor, reason string) error {
	statusModel := leagueStatusInsertModel{
		Sport:       desc.Sport,
		LeagueID:    desc.LeagueID,
		LeagueName:  desc.Name,
		Stale:       true,
		StaleReason: reason,
	}

	query, args, err := qb.InsertModel("league_status", statusModel, upsertLeagueStatusSuffix)
	if err != nil {
		return fmt.Errorf("build mark league stale query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark league stale: %w", err)
	}

	return nil
}

func (r *GameRepository) LeagueStatus(ctx context.Context, sport, leagueID string) (game.LeagueStatus, bool, error) {
	query, args, err := qb.Select("sport", "league_id", "league_name", "stale", "stale_reason", "updated_at").
		From("league_status").
		Where(qb.Eq("sport", sport), qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return game.LeagueStatus{}, false, fmt.Errorf("build select league status query: %w", err)
	}

	var row leagueStatusTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.LeagueStatus{}, false, nil
		}
		return game.LeagueStatus{}, false, fmt.Errorf("select league status: %w", err)
	}

	return game.LeagueStatus{
		Sport:       row.Sport,
		LeagueID:    row.LeagueID,
		Stale:       row.Stale,
		StaleReason: row.StaleReason,
		UpdatedAt:   row.UpdatedAt,
	}, true, nil
}
