package postgres

import "time"

type fetchCycleTableModel struct {
	CycleID           string    `db:"cycle_id"`
	StartedAt         time.Time `db:"started_at"`
	EndedAt           time.Time `db:"ended_at"`
	LeaguesAttempted  int       `db:"leagues_attempted"`
	LeaguesSucceeded  int       `db:"leagues_succeeded"`
	Failures          []byte    `db:"failures"`
	TotalGamesWritten int       `db:"total_games_written"`
}

type fetchCycleInsertModel struct {
	CycleID           string    `db:"cycle_id"`
	StartedAt         time.Time `db:"started_at"`
	EndedAt           time.Time `db:"ended_at"`
	LeaguesAttempted  int       `db:"leagues_attempted"`
	LeaguesSucceeded  int       `db:"leagues_succeeded"`
	Failures          []byte    `db:"failures"`
	TotalGamesWritten int       `db:"total_games_written"`
}
