package league

import (
	"fmt"
	"time"
)

// Descriptor identifies one fetchable (sport, league) competition as
// discovered from the upstream provider. Descriptors are immutable once
// handed to a fetch cycle; discovery replaces them wholesale per sport.
type Descriptor struct {
	Sport        string
	LeagueID     string
	Name         string
	Country      string
	Season       string
	DiscoveredAt time.Time
}

// Key returns the composite identity used for per-league locking and caching.
func (d Descriptor) Key() string {
	return d.Sport + "/" + d.LeagueID
}

func (d Descriptor) Validate() error {
	if d.Sport == "" {
		return fmt.Errorf("league sport is required")
	}
	if d.LeagueID == "" {
		return fmt.Errorf("league id is required")
	}
	if d.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
