package events

import (
	"context"
	"sync"
)

// MemorySink retains events in memory for tests, dev, and the admin API's
// recent-events view when Kafka is not configured.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewMemorySink constructs a sink that retains at most limit events,
// discarding the oldest first.
func NewMemorySink(limit int) *MemorySink {
	if limit < 1 {
		limit = 1024
	}
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// Events returns a copy of the retained events, oldest first.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemorySink) Close() error { return nil }
