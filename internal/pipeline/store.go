package pipeline

import (
	"context"

	"mindcast/pkg/domain"
)

// Store persists pipeline runs.
//
// Implementations: InMemoryStore for tests and single-node dev,
// PostgresStore for production.
type Store interface {
	// Create persists a new run.
	// Errors: wrapped sentinel.ErrConflict when a run with the same ID exists.
	Create(ctx context.Context, run *Run) error

	// Update replaces the stored run.
	// Errors: wrapped sentinel.ErrNotFound when the run does not exist.
	Update(ctx context.Context, run *Run) error

	// Get returns the run by ID.
	// Errors: wrapped sentinel.ErrNotFound when absent.
	Get(ctx context.Context, id domain.RunID) (*Run, error)

	// List returns runs newest-first, at most limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// SucceededForDate reports whether a succeeded run exists for the date
	// (YYYY-MM-DD).
	SucceededForDate(ctx context.Context, date string) (bool, error)
}
