package trends

import "context"

// Source fetches raw topic candidates from one upstream. Implementations
// must be safe for concurrent use; the service fetches all sources in
// parallel.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Candidate, error)
}
