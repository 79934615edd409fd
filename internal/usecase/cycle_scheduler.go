package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/scorelinehq/scorefeed/internal/platform/logging"
)

// CycleScheduler runs fetch cycles on a fixed interval. The first cycle runs
// immediately; later ticks that land while a cycle is still in flight are
// skipped instead of queued.
type CycleScheduler struct {
	orchestrator *FetchOrchestratorService
	logger       *logging.Logger
	interval     time.Duration
}

func NewCycleScheduler(orchestrator *FetchOrchestratorService, logger *logging.Logger, interval time.Duration) *CycleScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &CycleScheduler{
		orchestrator: orchestrator,
		logger:       logger,
		interval:     interval,
	}
}

// Run blocks until ctx is cancelled.
func (s *CycleScheduler) Run(ctx context.Context) {
	s.logger.InfoContext(ctx, "cycle scheduler started", "interval", s.interval.String())

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "cycle scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *CycleScheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if _, err := s.orchestrator.RunCycle(ctx); err != nil {
		if errors.Is(err, ErrCycleInProgress) {
			s.logger.WarnContext(ctx, "previous fetch cycle still running, skipping tick")
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.ErrorContext(ctx, "scheduled fetch cycle failed", "error", err.Error())
	}
}
