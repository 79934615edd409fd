package memory

import (
	"context"
	"sync"

	"github.com/scorelinehq/scorefeed/internal/domain/cycle"
)

type CycleRepository struct {
	mu     sync.RWMutex
	cycles []cycle.Stats
}

func NewCycleRepository() *CycleRepository {
	return &CycleRepository{}
}

func (r *CycleRepository) Record(_ context.Context, stats cycle.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cycles = append(r.cycles, stats)
	return nil
}

func (r *CycleRepository) Latest(_ context.Context) (cycle.Stats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.cycles) == 0 {
		return cycle.Stats{}, false, nil
	}
	return r.cycles[len(r.cycles)-1], true, nil
}

func (r *CycleRepository) List(_ context.Context, limit int) ([]cycle.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cycle.Stats, 0, len(r.cycles))
	for i := len(r.cycles) - 1; i >= 0; i-- {
		out = append(out, r.cycles[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
