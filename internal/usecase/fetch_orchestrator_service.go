package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/scorelinehq/scorefeed/internal/domain/cycle"
	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/platform/cache"
	"github.com/scorelinehq/scorefeed/internal/platform/id"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/scorelinehq/scorefeed/internal/platform/ratelimit"
	"github.com/scorelinehq/scorefeed/internal/platform/retry"
)

// GameProvider fetches one league's games within a time window.
type GameProvider interface {
	ListGames(ctx context.Context, desc league.Descriptor, since, until time.Time) ([]game.Record, error)
}

type FetchOrchestratorConfig struct {
	Concurrency  int
	CycleTimeout time.Duration
	WindowPast   time.Duration
	WindowFuture time.Duration
	CacheTTL     time.Duration
	CacheEnabled bool
}

// FetchOrchestratorService drives one fetch cycle: it walks the league
// catalog, fetches every league through the rate limiter and retry executor,
// and hands results to the snapshot service. League failures are isolated;
// one league cannot sink a cycle.
type FetchOrchestratorService struct {
	catalog  *CatalogService
	snapshot *SnapshotService
	provider GameProvider
	cycles   cycle.Repository
	limiter  *ratelimit.Limiter
	executor *retry.Executor
	fetched  *cache.Store[int]
	ids      id.Generator
	logger   *logging.Logger
	cfg      FetchOrchestratorConfig
	now      func() time.Time

	inFlight atomic.Bool
}

func NewFetchOrchestratorService(
	catalog *CatalogService,
	snapshot *SnapshotService,
	provider GameProvider,
	cycles cycle.Repository,
	limiter *ratelimit.Limiter,
	executor *retry.Executor,
	ids id.Generator,
	logger *logging.Logger,
	cfg FetchOrchestratorConfig,
) *FetchOrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 8 * time.Minute
	}
	if cfg.WindowFuture <= 0 {
		cfg.WindowFuture = 14 * 24 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	return &FetchOrchestratorService{
		catalog:  catalog,
		snapshot: snapshot,
		provider: provider,
		cycles:   cycles,
		limiter:  limiter,
		executor: executor,
		fetched:  cache.NewStore[int](),
		ids:      ids,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RunCycle executes one full fetch cycle and returns its stats. A second call
// while a cycle is running fails fast with ErrCycleInProgress.
func (s *FetchOrchestratorService) RunCycle(ctx context.Context) (cycle.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FetchOrchestratorService.RunCycle")
	defer span.End()

	if s.provider == nil || s.catalog == nil || s.snapshot == nil {
		return cycle.Stats{}, fmt.Errorf("%w: fetch orchestrator is not fully configured", ErrDependencyUnavailable)
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return cycle.Stats{}, ErrCycleInProgress
	}
	defer s.inFlight.Store(false)

	cycleID, err := s.ids.NewID()
	if err != nil {
		return cycle.Stats{}, fmt.Errorf("generate cycle id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	startedAt := s.now().UTC()
	leagues, err := s.catalog.AllLeagues(ctx)
	if err != nil {
		return cycle.Stats{}, fmt.Errorf("load league catalog: %w", err)
	}

	s.logger.InfoContext(ctx, "fetch cycle started",
		"cycle_id", cycleID,
		"leagues", len(leagues),
		"concurrency", s.cfg.Concurrency,
	)

	var succeeded atomic.Int32
	var gamesWritten atomic.Int64
	failures := make(chan cycle.LeagueFailure, len(leagues))

	pool, err := ants.NewPool(s.cfg.Concurrency)
	if err != nil {
		return cycle.Stats{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, desc := range leagues {
		desc := desc
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			written, err := s.fetchLeague(ctx, desc)
			if err != nil {
				failures <- cycle.LeagueFailure{
					Sport:     desc.Sport,
					LeagueID:  desc.LeagueID,
					ErrorKind: string(failureKind(err)),
				}
				return
			}
			succeeded.Add(1)
			gamesWritten.Add(int64(written))
		}); err != nil {
			workers.Done()
			failures <- cycle.LeagueFailure{
				Sport:     desc.Sport,
				LeagueID:  desc.LeagueID,
				ErrorKind: string(retry.KindFatal),
			}
		}
	}

	workers.Wait()
	close(failures)

	stats := cycle.Stats{
		CycleID:           cycleID,
		StartedAt:         startedAt,
		EndedAt:           s.now().UTC(),
		LeaguesAttempted:  len(leagues),
		LeaguesSucceeded:  int(succeeded.Load()),
		LeaguesFailed:     make([]cycle.LeagueFailure, 0),
		TotalGamesWritten: int(gamesWritten.Load()),
	}
	for failure := range failures {
		stats.LeaguesFailed = append(stats.LeaguesFailed, failure)
	}
	sort.SliceStable(stats.LeaguesFailed, func(i, j int) bool {
		if stats.LeaguesFailed[i].Sport != stats.LeaguesFailed[j].Sport {
			return stats.LeaguesFailed[i].Sport < stats.LeaguesFailed[j].Sport
		}
		return stats.LeaguesFailed[i].LeagueID < stats.LeaguesFailed[j].LeagueID
	})

	s.logger.InfoContext(ctx, "fetch cycle finished",
		"cycle_id", cycleID,
		"duration", stats.Duration().String(),
		"leagues_attempted", stats.LeaguesAttempted,
		"leagues_succeeded", stats.LeaguesSucceeded,
		"leagues_failed", len(stats.LeaguesFailed),
		"games_written", stats.TotalGamesWritten,
	)

	if s.cycles != nil {
		if err := s.cycles.Record(context.WithoutCancel(ctx), stats); err != nil {
			s.logger.ErrorContext(ctx, "record fetch cycle stats failed", "cycle_id", cycleID, "error", err.Error())
		}
	}

	return stats, nil
}

// fetchLeague runs the admission, retry and store pipeline for one league.
// The rate limiter is acquired inside the operation closure so every retry
// attempt pays for its own admission.
func (s *FetchOrchestratorService) fetchLeague(ctx context.Context, desc league.Descriptor) (int, error) {
	if s.cfg.CacheEnabled {
		if written, ok := s.fetched.Get(ctx, desc.Key()); ok {
			s.logger.DebugContext(ctx, "league snapshot still fresh, skipping fetch",
				"sport", desc.Sport,
				"league_id", desc.LeagueID,
				"games", written,
			)
			return 0, nil
		}
	}

	since := s.now().UTC().Add(-s.cfg.WindowPast)
	until := s.now().UTC().Add(s.cfg.WindowFuture)

	var records []game.Record
	op := func(ctx context.Context) error {
		if s.limiter != nil {
			if err := s.limiter.Acquire(ctx, desc.Sport); err != nil {
				return err
			}
		}

		out, err := s.provider.ListGames(ctx, desc, since, until)
		if err != nil {
			return err
		}
		records = out
		return nil
	}

	var err error
	if s.executor != nil {
		err = s.executor.Do(ctx, op)
	} else {
		err = op(ctx)
	}
	if err != nil {
		s.markFailed(ctx, desc, err)
		return 0, err
	}

	written, err := s.snapshot.StoreLeague(ctx, desc, records)
	if err != nil {
		s.markFailed(ctx, desc, err)
		return 0, err
	}

	if s.cfg.CacheEnabled {
		s.fetched.Set(ctx, desc.Key(), written, s.cfg.CacheTTL)
	}

	return written, nil
}

func (s *FetchOrchestratorService) markFailed(ctx context.Context, desc league.Descriptor, cause error) {
	s.logger.WarnContext(ctx, "league fetch failed",
		"sport", desc.Sport,
		"league_id", desc.LeagueID,
		"error_kind", string(failureKind(cause)),
		"error", cause.Error(),
	)

	markCtx := context.WithoutCancel(ctx)
	if err := s.snapshot.MarkStale(markCtx, desc, cause.Error()); err != nil {
		s.logger.ErrorContext(ctx, "mark league stale failed",
			"sport", desc.Sport,
			"league_id", desc.LeagueID,
			"error", err.Error(),
		)
	}
}

// LatestCycle returns the most recent cycle stats.
func (s *FetchOrchestratorService) LatestCycle(ctx context.Context) (cycle.Stats, error) {
	if s.cycles == nil {
		return cycle.Stats{}, fmt.Errorf("%w: cycle repository is not configured", ErrDependencyUnavailable)
	}

	stats, ok, err := s.cycles.Latest(ctx)
	if err != nil {
		return cycle.Stats{}, fmt.Errorf("load latest cycle: %w", err)
	}
	if !ok {
		return cycle.Stats{}, fmt.Errorf("%w: no fetch cycle has run yet", ErrNotFound)
	}

	return stats, nil
}

// ListCycles returns recent cycle stats, newest first.
func (s *FetchOrchestratorService) ListCycles(ctx context.Context, limit int) ([]cycle.Stats, error) {
	if s.cycles == nil {
		return nil, fmt.Errorf("%w: cycle repository is not configured", ErrDependencyUnavailable)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	out, err := s.cycles.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}

	return out, nil
}

// PipelineCounters exposes limiter and cache counters for the stats endpoint.
type PipelineCounters struct {
	LimiterRequests int64 `json:"limiter_requests"`
	LimiterWaited   int64 `json:"limiter_waited"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
}

func (s *FetchOrchestratorService) Counters() PipelineCounters {
	out := PipelineCounters{
		CacheHits:   s.fetched.Hits(),
		CacheMisses: s.fetched.Misses(),
	}
	if s.limiter != nil {
		out.LimiterRequests = s.limiter.TotalRequests()
		out.LimiterWaited = s.limiter.TotalWaited()
	}
	return out
}

func failureKind(err error) retry.Kind {
	if fetchErr, ok := retry.AsFetchError(err); ok {
		return fetchErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.KindTimeout
	}
	return retry.KindTransient
}
