package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/scorelinehq/scorefeed/internal/domain/cycle"
	qb "github.com/scorelinehq/scorefeed/internal/platform/querybuilder"
)

type CycleRepository struct {
	db *sqlx.DB
}

func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

func (r *CycleRepository) Record(ctx context.Context, stats cycle.Stats) error {
	failures := stats.LeaguesFailed
	if failures == nil {
		failures = []cycle.LeagueFailure{}
	}
	rawFailures, err := sonic.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshal cycle failures: %w", err)
	}

	insertModel := fetchCycleInsertModel{
		CycleID:           stats.CycleID,
		StartedAt:         stats.StartedAt.UTC(),
		EndedAt:           stats.EndedAt.UTC(),
		LeaguesAttempted:  stats.LeaguesAttempted,
		LeaguesSucceeded:  stats.LeaguesSucceeded,
		Failures:          rawFailures,
		TotalGamesWritten: stats.TotalGamesWritten,
	}

	query, args, err := qb.InsertModel("fetch_cycles", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert fetch cycle query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fetch cycle: %w", err)
	}

	return nil
}

func (r *CycleRepository) Latest(ctx context.Context) (cycle.Stats, bool, error) {
	query, args, err := cycleSelect().
		OrderBy("started_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return cycle.Stats{}, false, fmt.Errorf("build select latest fetch cycle query: %w", err)
	}

	var row fetchCycleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return cycle.Stats{}, false, nil
		}
		return cycle.Stats{}, false, fmt.Errorf("select latest fetch cycle: %w", err)
	}

	stats, err := cycleFromRow(row)
	if err != nil {
		return cycle.Stats{}, false, err
	}

	return stats, true, nil
}

func (r *CycleRepository) List(ctx context.Context, limit int) ([]cycle.Stats, error) {
	query, args, err := cycleSelect().
		OrderBy("started_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fetch cycles query: %w", err)
	}

	var rows []fetchCycleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fetch cycles: %w", err)
	}

	out := make([]cycle.Stats, 0, len(rows))
	for _, row := range rows {
		stats, err := cycleFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, stats)
	}

	return out, nil
}

func cycleSelect() *qb.SelectBuilder {
	return qb.Select(
		"cycle_id",
		"started_at",
		"ended_at",
		"leagues_attempted",
		"leagues_succeeded",
		"failures",
		"total_games_written",
	).From("fetch_cycles")
}

func cycleFromRow(row fetchCycleTableModel) (cycle.Stats, error) {
	var failures []cycle.LeagueFailure
	if len(row.Failures) > 0 {
		if err := sonic.Unmarshal(row.Failures, &failures); err != nil {
			return cycle.Stats{}, fmt.Errorf("unmarshal cycle failures: %w", err)
		}
	}

	return cycle.Stats{
		CycleID:           row.CycleID,
		StartedAt:         row.StartedAt,
		EndedAt:           row.EndedAt,
		LeaguesAttempted:  row.LeaguesAttempted,
		LeaguesSucceeded:  row.LeaguesSucceeded,
		LeaguesFailed:     failures,
		TotalGamesWritten: row.TotalGamesWritten,
	}, nil
}
