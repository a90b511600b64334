package trends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
	"mindcast/pkg/requestcontext"
)

// Service selects the daily topic: fetch all sources in parallel, rank,
// filter against the blocklist and recent history, and record the winner.
type Service struct {
	sources      []Source
	history      HistoryStore
	blocklist    BlocklistStore
	cooldown     Cooldown
	cooldownDays int
	logger       *slog.Logger
}

// NewService constructs the trends service. cooldown may be nil when Redis
// is not configured; history-based dedup still applies.
func NewService(sources []Source, history HistoryStore, blocklist BlocklistStore, cooldown Cooldown, cooldownDays int, logger *slog.Logger) *Service {
	if cooldownDays <= 0 {
		cooldownDays = 30
	}
	return &Service{
		sources:      sources,
		history:      history,
		blocklist:    blocklist,
		cooldown:     cooldown,
		cooldownDays: cooldownDays,
		logger:       logger,
	}
}

// SelectDaily picks and records the topic for the given date (YYYY-MM-DD).
//
// Errors: wrapped sentinel.ErrNotFound when no eligible candidate survives
// filtering; joined source errors when every source fails.
func (s *Service) SelectDaily(ctx context.Context, date string) (*Topic, error) {
	now := requestcontext.Now(ctx)
	cutoff := now.AddDate(0, 0, -s.cooldownDays)

	recent, err := s.history.ListSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load recent topics: %w", err)
	}

	candidates, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blocklist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load blocklist: %w", err)
	}

	for _, topic := range Rank(candidates, recent) {
		if s.excluded(ctx, topic, blocked, recent) {
			continue
		}

		topic.ID = domain.NewTopicID()
		topic.SelectedFor = date
		topic.FetchedAt = now
		if err := s.history.Record(ctx, topic); err != nil {
			return nil, fmt.Errorf("record topic: %w", err)
		}
		s.markCooldown(ctx, topic)

		s.logger.Info("topic selected",
			"title", topic.Title, "source", topic.Source, "score", topic.Score)
		return &topic, nil
	}

	return nil, fmt.Errorf("no eligible topic for %s: %w", date, sentinel.ErrNotFound)
}

// fetchAll queries every source in parallel. A failing source is tolerated
// as long as at least one source returns candidates.
func (s *Service) fetchAll(ctx context.Context) ([]Candidate, error) {
	var (
		mu         sync.Mutex
		candidates []Candidate
		failures   []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, source := range s.sources {
		source := source
		g.Go(func() error {
			fetched, err := source.Fetch(gctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Errorf("source %s: %w", source.Name(), err))
				s.logger.Warn("topic source failed", "source", source.Name(), "error", err)
				// Partial failure is fine; don't cancel the sibling fetches.
				return nil
			}
			candidates = append(candidates, fetched...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		if len(failures) > 0 {
			return nil, fmt.Errorf("all topic sources failed: %w", errors.Join(failures...))
		}
		return nil, fmt.Errorf("topic sources returned no candidates: %w", sentinel.ErrNotFound)
	}
	return candidates, nil
}

func (s *Service) excluded(ctx context.Context, topic Topic, blocked []string, recent []Topic) bool {
	lowerTitle := strings.ToLower(topic.Title)
	for _, phrase := range blocked {
		if strings.Contains(lowerTitle, phrase) {
			return true
		}
	}

	if Similar(topic.Keywords, recent) {
		return true
	}

	if s.cooldown != nil {
		seen, err := s.cooldown.Seen(ctx, CooldownKey(topic.Title))
		if err != nil {
			// Redis down must not block selection; history dedup already ran.
			s.logger.Warn("cooldown check failed", "error", err)
			return false
		}
		return seen
	}
	return false
}

func (s *Service) markCooldown(ctx context.Context, topic Topic) {
	if s.cooldown == nil {
		return
	}
	ttl := time.Duration(s.cooldownDays) * 24 * time.Hour
	if err := s.cooldown.Mark(ctx, CooldownKey(topic.Title), ttl); err != nil {
		s.logger.Warn("cooldown mark failed", "error", err)
	}
}
