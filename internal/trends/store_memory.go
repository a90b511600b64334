package trends

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mindcast/pkg/platform/sentinel"
)

// InMemoryHistoryStore keeps topic history in memory for tests/dev.
type InMemoryHistoryStore struct {
	mu     sync.RWMutex
	topics []Topic
}

// NewHistoryStore constructs an empty in-memory history store.
func NewHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{}
}

func (s *InMemoryHistoryStore) Record(_ context.Context, topic Topic) error {
	if topic.ID.IsZero() {
		return fmt.Errorf("topic id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	return nil
}

func (s *InMemoryHistoryStore) ListSince(_ context.Context, cutoff time.Time) ([]Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Topic
	for _, topic := range s.topics {
		if !topic.FetchedAt.Before(cutoff) {
			out = append(out, topic)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryHistoryStore) Recent(_ context.Context, limit int) ([]Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Topic, len(s.topics))
	copy(out, s.topics)
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(topics []Topic) {
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].FetchedAt.After(topics[j].FetchedAt)
	})
}

// InMemoryBlocklistStore keeps blocked phrases in memory for tests/dev.
type InMemoryBlocklistStore struct {
	mu      sync.RWMutex
	phrases map[string]bool
}

// NewBlocklistStore constructs an empty in-memory blocklist store.
func NewBlocklistStore() *InMemoryBlocklistStore {
	return &InMemoryBlocklistStore{phrases: make(map[string]bool)}
}

func (s *InMemoryBlocklistStore) Add(_ context.Context, phrase string) error {
	phrase = normalizePhrase(phrase)
	if phrase == "" {
		return fmt.Errorf("phrase cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phrases[phrase] = true
	return nil
}

func (s *InMemoryBlocklistStore) Remove(_ context.Context, phrase string) error {
	phrase = normalizePhrase(phrase)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phrases[phrase] {
		return fmt.Errorf("blocklist phrase %q: %w", phrase, sentinel.ErrNotFound)
	}
	delete(s.phrases, phrase)
	return nil
}

func (s *InMemoryBlocklistStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.phrases))
	for phrase := range s.phrases {
		out = append(out, phrase)
	}
	sort.Strings(out)
	return out, nil
}

func normalizePhrase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
