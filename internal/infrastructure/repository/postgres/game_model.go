package postgres

import (
	"database/sql"
	"time"
)

type gameRecordTableModel struct {
	ID             int64          `db:"id"`
	Sport          string         `db:"sport"`
	LeagueID       string         `db:"league_id"`
	ExternalGameID string         `db:"external_game_id"`
	HomeTeam       string         `db:"home_team"`
	AwayTeam       string         `db:"away_team"`
	StartTime      time.Time      `db:"start_time"`
	Status         string         `db:"status"`
	HomeScore      sql.NullInt64  `db:"home_score"`
	AwayScore      sql.NullInt64  `db:"away_score"`
	RawPayload     []byte         `db:"raw_payload"`
	FetchedAt      time.Time      `db:"fetched_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	LeagueName     sql.NullString `db:"league_name"`
}

type gameRecordInsertModel struct {
	Sport          string        `db:"sport"`
	LeagueID       string        `db:"league_id"`
	ExternalGameID string        `db:"external_game_id"`
	HomeTeam       string        `db:"home_team"`
	AwayTeam       string        `db:"away_team"`
	StartTime      time.Time     `db:"start_time"`
	Status         string        `db:"status"`
	HomeScore      sql.NullInt64 `db:"home_score"`
	AwayScore      sql.NullInt64 `db:"away_score"`
	RawPayload     []byte        `db:"raw_payload"`
	FetchedAt      time.Time     `db:"fetched_at"`
}

type leagueStatusTableModel struct {
	Sport       string    `db:"sport"`
	LeagueID    string    `db:"league_id"`
	LeagueName  string    `db:"league_name"`
	Stale       bool      `db:"stale"`
	StaleReason string    `db:"stale_reason"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type leagueStatusInsertModel struct {
	Sport       string `db:"sport"`
	LeagueID    string `db:"league_id"`
	LeagueName  string `db:"league_name"`
	Stale       bool   `db:"stale"`
	StaleReason string `db:"stale_reason"`
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
