package statswire

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
)

type leaguesEnvelope struct {
	Data []leagueItem `json:"data"`
}

type leagueItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  string `json:"season"`
}

type gamesEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

type gameItem struct {
	ID        string     `json:"id"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	StartTime string     `json:"start_time"`
	Status    string     `json:"status"`
	Scores    *gameScore `json:"scores"`
}

type gameScore struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func mapLeagueItem(sport string, item leagueItem, discoveredAt time.Time) (league.Descriptor, bool) {
	id := strings.TrimSpace(item.ID)
	name := strings.TrimSpace(item.Name)
	if id == "" || name == "" {
		return league.Descriptor{}, false
	}

	return league.Descriptor{
		Sport:        sport,
		LeagueID:     id,
		Name:         name,
		Country:      strings.TrimSpace(item.Country),
		Season:       strings.TrimSpace(item.Season),
		DiscoveredAt: discoveredAt,
	}, true
}

func mapGameItem(desc league.Descriptor, raw json.RawMessage, item gameItem, fetchedAt time.Time) (game.Record, bool) {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return game.Record{}, false
	}

	startTime, err := parseProviderTime(item.StartTime)
	if err != nil {
		return game.Record{}, false
	}

	record := game.Record{
		Sport:          desc.Sport,
		LeagueID:       desc.LeagueID,
		ExternalGameID: id,
		HomeTeam:       strings.TrimSpace(item.HomeTeam),
		AwayTeam:       strings.TrimSpace(item.AwayTeam),
		StartTime:      startTime,
		Status:         game.NormalizeStatus(item.Status),
		RawPayload:     append([]byte(nil), raw...),
		FetchedAt:      fetchedAt,
	}
	if item.Scores != nil {
		record.HomeScore = item.Scores.Home
		record.AwayScore = item.Scores.Away
	}

	return record, true
}

func parseProviderTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
