package cycle

import "time"

// LeagueFailure records one league that failed within a cycle and why.
type LeagueFailure struct {
	Sport     string `json:"sport"`
	LeagueID  string `json:"league_id"`
	ErrorKind string `json:"error_kind"`
}

// Stats summarizes one fetch cycle. Immutable once EndedAt is set.
type Stats struct {
	CycleID           string
	StartedAt         time.Time
	EndedAt           time.Time
	LeaguesAttempted  int
	LeaguesSucceeded  int
	LeaguesFailed     []LeagueFailure
	TotalGamesWritten int
}

// Consistent reports whether the counters add up: every attempted league is
// either a success or appears in LeaguesFailed.
func (s Stats) Consistent() bool {
	return s.LeaguesAttempted == s.LeaguesSucceeded+len(s.LeaguesFailed)
}

func (s Stats) Duration() time.Duration {
	if s.EndedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
