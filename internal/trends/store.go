package trends

import (
	"context"
	"time"
)

// Error Contract:
// All store methods follow this pattern:
// - Return wrapped sentinel.ErrNotFound when a requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// HistoryStore persists topics that have been covered so selection can
// dedup against them.
type HistoryStore interface {
	// Record appends a covered topic. The topic must carry ID, SelectedFor
	// and FetchedAt.
	Record(ctx context.Context, topic Topic) error
	// ListSince returns topics selected on or after the cutoff, newest first.
	ListSince(ctx context.Context, cutoff time.Time) ([]Topic, error)
	// Recent returns up to limit topics, newest first.
	Recent(ctx context.Context, limit int) ([]Topic, error)
}

// BlocklistStore persists phrases that must never be selected as topics.
type BlocklistStore interface {
	Add(ctx context.Context, phrase string) error
	Remove(ctx context.Context, phrase string) error
	List(ctx context.Context) ([]string, error)
}

// Cooldown marks selected topics so other instances skip them for the
// cooldown window. The service treats a nil Cooldown as "always unseen".
type Cooldown interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
}
