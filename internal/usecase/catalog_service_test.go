package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
)

type stubLeagueProvider struct {
	mu       sync.Mutex
	bySport  map[string][]league.Descriptor
	errs     map[string]error
	listCall int
}

func (p *stubLeagueProvider) ListLeagues(_ context.Context, sport string) ([]league.Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listCall++
	if err := p.errs[sport]; err != nil {
		return nil, err
	}
	return p.bySport[sport], nil
}

func catalogLeague(sport, id string) league.Descriptor {
	return league.Descriptor{Sport: sport, LeagueID: id, Name: "League " + id}
}

func TestCatalogService_LeaguesRefreshesOnFirstUse(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		bySport: map[string][]league.Descriptor{
			"soccer": {catalogLeague("soccer", "epl"), catalogLeague("soccer", "laliga")},
		},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{Sports: []string{"soccer"}, TTL: time.Hour})

	leagues, err := svc.Leagues(context.Background(), "soccer")
	if err != nil {
		t.Fatalf("leagues: %v", err)
	}
	if len(leagues) != 2 {
		t.Fatalf("expected 2 leagues, got=%d", len(leagues))
	}
}

func TestCatalogService_FailedRefreshKeepsPreviousDirectory(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		bySport: map[string][]league.Descriptor{
			"soccer": {catalogLeague("soccer", "epl")},
		},
		errs: map[string]error{},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{Sports: []string{"soccer"}, TTL: time.Millisecond})

	if _, err := svc.Leagues(context.Background(), "soccer"); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	provider.mu.Lock()
	provider.errs["soccer"] = errors.New("upstream down")
	provider.mu.Unlock()
	time.Sleep(5 * time.Millisecond)

	leagues, err := svc.Leagues(context.Background(), "soccer")
	if err != nil {
		t.Fatalf("expected stale directory to be served, got error: %v", err)
	}
	if len(leagues) != 1 || leagues[0].LeagueID != "epl" {
		t.Fatalf("expected previous directory, got=%+v", leagues)
	}
}

func TestCatalogService_FirstRefreshFailureReturnsError(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		errs: map[string]error{"soccer": errors.New("upstream down")},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{Sports: []string{"soccer"}, TTL: time.Hour})

	if _, err := svc.Leagues(context.Background(), "soccer"); err == nil {
		t.Fatalf("expected error when no previous directory exists")
	}
}

func TestCatalogService_RefreshAllIsolatesSportFailures(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		bySport: map[string][]league.Descriptor{
			"soccer": {catalogLeague("soccer", "epl")},
			"hockey": {catalogLeague("hockey", "nhl"), catalogLeague("hockey", "khl")},
		},
		errs: map[string]error{"basketball": errors.New("upstream down")},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{
		Sports: []string{"soccer", "basketball", "hockey"},
		TTL:    time.Hour,
	})

	stats, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if stats.SportsRefreshed != 2 {
		t.Fatalf("expected 2 refreshed sports, got=%d", stats.SportsRefreshed)
	}
	if len(stats.SportsFailed) != 1 || stats.SportsFailed[0] != "basketball" {
		t.Fatalf("unexpected failed sports: %+v", stats.SportsFailed)
	}
	if stats.LeaguesTotal != 3 {
		t.Fatalf("expected 3 leagues total, got=%d", stats.LeaguesTotal)
	}
}

func TestCatalogService_AllLeaguesFailsWhenEverySportIsUnreachable(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		errs: map[string]error{"soccer": errors.New("down"), "hockey": errors.New("down")},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{Sports: []string{"soccer", "hockey"}, TTL: time.Hour})

	if _, err := svc.AllLeagues(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable error, got=%v", err)
	}
}

func TestCatalogService_AllLeaguesServesPartialDirectory(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		bySport: map[string][]league.Descriptor{
			"soccer": {catalogLeague("soccer", "epl")},
		},
		errs: map[string]error{"hockey": errors.New("down")},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{Sports: []string{"soccer", "hockey"}, TTL: time.Hour})

	leagues, err := svc.AllLeagues(context.Background())
	if err != nil {
		t.Fatalf("all leagues: %v", err)
	}
	if len(leagues) != 1 || leagues[0].LeagueID != "epl" {
		t.Fatalf("expected the reachable sport's directory, got=%+v", leagues)
	}
}

func TestCatalogService_RefreshAllFailsWhenEverySportFails(t *testing.T) {
	t.Parallel()

	provider := &stubLeagueProvider{
		errs: map[string]error{"soccer": errors.New("down"), "hockey": errors.New("down")},
	}
	svc := NewCatalogService(provider, logging.NewNop(), CatalogConfig{Sports: []string{"soccer", "hockey"}, TTL: time.Hour})

	if _, err := svc.RefreshAll(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable error, got=%v", err)
	}
}
