package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
)

// LeagueProvider lists the leagues one sport currently offers upstream.
type LeagueProvider interface {
	ListLeagues(ctx context.Context, sport string) ([]league.Descriptor, error)
}

type CatalogConfig struct {
	Sports []string
	TTL    time.Duration
}

// CatalogService keeps an in-memory league directory per sport. A refresh
// replaces one sport's entry atomically; a failed refresh keeps the previous
// entry so readers always see the last known good directory.
type CatalogService struct {
	provider LeagueProvider
	logger   *logging.Logger
	cfg      CatalogConfig
	now      func() time.Time

	mu      sync.RWMutex
	bySport map[string]catalogEntry
}

type catalogEntry struct {
	leagues     []league.Descriptor
	refreshedAt time.Time
}

// DiscoveryStats summarizes one catalog refresh pass.
type DiscoveryStats struct {
	SportsRefreshed int       `json:"sports_refreshed"`
	SportsFailed    []string  `json:"sports_failed"`
	LeaguesTotal    int       `json:"leagues_total"`
	RefreshedAt     time.Time `json:"refreshed_at"`
}

func NewCatalogService(provider LeagueProvider, logger *logging.Logger, cfg CatalogConfig) *CatalogService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 6 * time.Hour
	}

	return &CatalogService{
		provider: provider,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		bySport:  make(map[string]catalogEntry),
	}
}

// Leagues returns the league directory for one sport, refreshing it first
// when the cached entry is missing or older than the TTL. A failed refresh
// falls back to the previous entry when one exists.
func (s *CatalogService) Leagues(ctx context.Context, sport string) ([]league.Descriptor, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Leagues")
	defer span.End()

	sport = strings.ToLower(strings.TrimSpace(sport))
	if sport == "" {
		return nil, fmt.Errorf("%w: sport is required", ErrInvalidInput)
	}

	s.mu.RLock()
	entry, ok := s.bySport[sport]
	s.mu.RUnlock()

	if ok && s.now().Sub(entry.refreshedAt) < s.cfg.TTL {
		return copyLeagues(entry.leagues), nil
	}

	if err := s.Refresh(ctx, sport); err != nil {
		if !ok {
			return nil, err
		}
		s.logger.WarnContext(ctx, "league catalog refresh failed, serving previous directory",
			"sport", sport,
			"age", s.now().Sub(entry.refreshedAt).String(),
			"error", err.Error(),
		)
		return copyLeagues(entry.leagues), nil
	}

	s.mu.RLock()
	entry = s.bySport[sport]
	s.mu.RUnlock()

	return copyLeagues(entry.leagues), nil
}

// AllLeagues returns every sport's directory, refreshing expired entries.
// One sport failing does not hide the others, but a catalog with no
// directory at all is an error: a cycle must not start against it.
func (s *CatalogService) AllLeagues(ctx context.Context) ([]league.Descriptor, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.AllLeagues")
	defer span.End()

	out := make([]league.Descriptor, 0)
	failed := 0
	for _, sport := range s.cfg.Sports {
		leagues, err := s.Leagues(ctx, sport)
		if err != nil {
			failed++
			s.logger.WarnContext(ctx, "skipping sport with no league directory", "sport", sport, "error", err.Error())
			continue
		}
		out = append(out, leagues...)
	}
	if failed > 0 && failed == len(s.cfg.Sports) {
		return nil, fmt.Errorf("%w: no sport has a league directory", ErrDependencyUnavailable)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sport != out[j].Sport {
			return out[i].Sport < out[j].Sport
		}
		return out[i].LeagueID < out[j].LeagueID
	})
	return out, nil
}

// Refresh replaces one sport's directory from the provider.
func (s *CatalogService) Refresh(ctx context.Context, sport string) error {
	if s.provider == nil {
		return fmt.Errorf("%w: league provider is not configured", ErrDependencyUnavailable)
	}

	leagues, err := s.provider.ListLeagues(ctx, sport)
	if err != nil {
		return fmt.Errorf("list leagues sport=%s: %w", sport, err)
	}

	s.mu.Lock()
	s.bySport[sport] = catalogEntry{
		leagues:     leagues,
		refreshedAt: s.now(),
	}
	s.mu.Unlock()

	return nil
}

// RefreshAll refreshes every configured sport in parallel. One sport failing
// does not stop the others.
func (s *CatalogService) RefreshAll(ctx context.Context) (DiscoveryStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.RefreshAll")
	defer span.End()

	stats := DiscoveryStats{
		SportsFailed: make([]string, 0),
		RefreshedAt:  s.now().UTC(),
	}

	var mu sync.Mutex
	var wg conc.WaitGroup
	for _, sport := range s.cfg.Sports {
		sport := sport
		wg.Go(func() {
			err := s.Refresh(ctx, sport)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.WarnContext(ctx, "league catalog refresh failed", "sport", sport, "error", err.Error())
				stats.SportsFailed = append(stats.SportsFailed, sport)
				return
			}
			stats.SportsRefreshed++
		})
	}
	wg.Wait()

	sort.Strings(stats.SportsFailed)

	s.mu.RLock()
	for _, entry := range s.bySport {
		stats.LeaguesTotal += len(entry.leagues)
	}
	s.mu.RUnlock()

	if stats.SportsRefreshed == 0 && len(stats.SportsFailed) > 0 {
		return stats, fmt.Errorf("%w: all league catalog refreshes failed", ErrDependencyUnavailable)
	}

	return stats, nil
}

func copyLeagues(items []league.Descriptor) []league.Descriptor {
	out := make([]league.Descriptor, len(items))
	copy(out, items)
	return out
}
