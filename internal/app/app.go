package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/scorelinehq/scorefeed/external/statswire"
	"github.com/scorelinehq/scorefeed/internal/config"
	"github.com/scorelinehq/scorefeed/internal/domain/cycle"
	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/infrastructure/repository/memory"
	"github.com/scorelinehq/scorefeed/internal/infrastructure/repository/postgres"
	"github.com/scorelinehq/scorefeed/internal/interfaces/httpapi"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/scorelinehq/scorefeed/internal/platform/ratelimit"
	"github.com/scorelinehq/scorefeed/internal/platform/resilience"
	"github.com/scorelinehq/scorefeed/internal/platform/retry"
	"github.com/scorelinehq/scorefeed/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	otelsqlx "github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
)

// App holds the wired service graph plus the resources that need closing on
// shutdown.
type App struct {
	Server    *http.Server
	Scheduler *usecase.CycleScheduler

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db        *sqlx.DB
		gameRepo  game.Repository
		cycleRepo cycle.Repository
		err       error
	)
	if cfg.DBEnabled {
		db, err = openDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		gameRepo = postgres.NewGameRepository(db)
		cycleRepo = postgres.NewCycleRepository(db)
	} else {
		logger.Warn("database disabled, using in-memory repositories")
		gameRepo = memory.NewGameRepository()
		cycleRepo = memory.NewCycleRepository()
	}

	client := statswire.NewClient(statswire.ClientConfig{
		BaseURL: cfg.StatsWireBaseURL,
		Token:   cfg.StatsWireToken,
		Timeout: cfg.StatsWireTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsWireCircuitEnabled,
			FailureThreshold: cfg.StatsWireCircuitFailureCount,
			OpenTimeout:      cfg.StatsWireCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsWireCircuitHalfOpenMaxReq,
		},
	})

	limiter := ratelimit.New(ratelimit.Config{
		Calls:  cfg.RateLimitCalls,
		Window: cfg.RateLimitWindow,
	})
	executor := retry.NewExecutor(retry.Config{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}, statswire.Classify, logger)

	catalogSvc := usecase.NewCatalogService(client, logger, usecase.CatalogConfig{
		Sports: cfg.Sports,
		TTL:    cfg.DiscoveryTTL,
	})
	snapshotSvc := usecase.NewSnapshotService(gameRepo, logger)
	orchestrator := usecase.NewFetchOrchestratorService(
		catalogSvc,
		snapshotSvc,
		client,
		cycleRepo,
		limiter,
		executor,
		nil,
		logger,
		usecase.FetchOrchestratorConfig{
			Concurrency:  cfg.FetchConcurrency,
			CycleTimeout: cfg.CycleTimeout,
			WindowPast:   cfg.FetchWindowPast,
			WindowFuture: cfg.FetchWindowFuture,
			CacheTTL:     cfg.CacheTTL,
			CacheEnabled: cfg.CacheEnabled,
		},
	)

	var scheduler *usecase.CycleScheduler
	if cfg.SchedulerEnabled {
		scheduler = usecase.NewCycleScheduler(orchestrator, logger, cfg.CycleInterval)
	}

	handler := httpapi.NewHandler(catalogSvc, snapshotSvc, orchestrator, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		db:        db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
