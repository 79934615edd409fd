package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Record is one normalized game in the local snapshot. Identity is the
// composite (Sport, LeagueID, ExternalGameID); every successful fetch for a
// league overwrites that league's records as a set.
type Record struct {
	Sport          string
	LeagueID       string
	ExternalGameID string
	HomeTeam       string
	AwayTeam       string
	StartTime      time.Time
	Status         string
	HomeScore      *int
	AwayScore      *int
	RawPayload     []byte
	FetchedAt      time.Time
}

func (r Record) Key() string {
	return r.Sport + "/" + r.LeagueID + "/" + r.ExternalGameID
}

// LeagueStatus carries the staleness flag for one league's snapshot. A stale
// league still serves its last-known-good records to readers.
type LeagueStatus struct {
	Sport       string
	LeagueID    string
	Stale       bool
	StaleReason string
	UpdatedAt   time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "FINAL":
		return true
	default:
		return false
	}
}
