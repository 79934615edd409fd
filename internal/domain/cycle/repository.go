package cycle

import "context"

// Repository keeps the per-cycle stats history.
type Repository interface {
	Record(ctx context.Context, stats Stats) error
	Latest(ctx context.Context) (Stats, bool, error)
	List(ctx context.Context, limit int) ([]Stats, error)
}
