package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
)

// InMemoryStore keeps runs in process memory. Reads and writes deep-copy so
// callers can mutate their run without racing the store.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[domain.RunID]*Run
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[domain.RunID]*Run)}
}

func (s *InMemoryStore) Create(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("run %s already exists: %w", run.ID, sentinel.ErrConflict)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, sentinel.ErrNotFound)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.RunID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, sentinel.ErrNotFound)
	}
	return cloneRun(run), nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, cloneRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) SucceededForDate(_ context.Context, date string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, run := range s.runs {
		if run.Date == date && run.Status == domain.StatusSucceeded {
			return true, nil
		}
	}
	return false, nil
}

func cloneRun(run *Run) *Run {
	out := *run
	out.Stages = make([]StageRecord, len(run.Stages))
	copy(out.Stages, run.Stages)
	if run.Topic != nil {
		topic := *run.Topic
		out.Topic = &topic
	}
	if run.Script != nil {
		sc := *run.Script
		out.Script = &sc
	}
	if run.Artifact != nil {
		artifact := *run.Artifact
		out.Artifact = &artifact
	}
	if run.Post != nil {
		post := *run.Post
		out.Post = &post
	}
	return &out
}

var _ Store = (*InMemoryStore)(nil)
