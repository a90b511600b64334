package trends

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
	"mindcast/pkg/requestcontext"
)

type stubSource struct {
	name       string
	candidates []Candidate
	err        error
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Fetch(context.Context) ([]Candidate, error) {
	return s.candidates, s.err
}

type stubCooldown struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newStubCooldown() *stubCooldown {
	return &stubCooldown{seen: map[string]bool{}}
}

func (c *stubCooldown) Seen(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[key], c.err
}

func (c *stubCooldown) Mark(_ context.Context, key string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[key] = true
	return c.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_SelectDaily(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))

	t.Run("selects best candidate and records history", func(t *testing.T) {
		source := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Coping with anxiety before big meetings", Engagement: 900, Source: "reddit"},
			{Title: "A photo of my lunch", Engagement: 20000, Source: "reddit"},
		}}
		history := NewHistoryStore()
		cooldown := newStubCooldown()
		svc := NewService([]Source{source}, history, NewBlocklistStore(), cooldown, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Coping with anxiety before big meetings", topic.Title)
		assert.Equal(t, "2026-08-30", topic.SelectedFor)
		assert.False(t, topic.ID.IsZero())

		recorded, err := history.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recorded, 1)
		assert.Equal(t, topic.ID, recorded[0].ID)

		assert.True(t, cooldown.seen[CooldownKey(topic.Title)])
	})

	t.Run("skips blocklisted titles", func(t *testing.T) {
		source := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Anxiety medication megathread", Engagement: 9000},
			{Title: "Grounding techniques for stress", Engagement: 100},
		}}
		blocklist := NewBlocklistStore()
		require.NoError(t, blocklist.Add(ctx, "medication"))
		svc := NewService([]Source{source}, NewHistoryStore(), blocklist, nil, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Grounding techniques for stress", topic.Title)
	})

	t.Run("skips topics already covered in the window", func(t *testing.T) {
		history := NewHistoryStore()
		covered := Topic{
			ID:          domain.NewTopicID(),
			Title:       "Sleep hygiene for shift workers",
			Keywords:    Keywords("Sleep hygiene for shift workers"),
			SelectedFor: "2026-08-20",
			FetchedAt:   time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		}
		require.NoError(t, history.Record(ctx, covered))

		source := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Sleep hygiene for shift workers", Engagement: 5000},
			{Title: "Loneliness after moving cities", Engagement: 50},
		}}
		svc := NewService([]Source{source}, history, NewBlocklistStore(), nil, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Loneliness after moving cities", topic.Title)
	})

	t.Run("skips candidates under cooldown", func(t *testing.T) {
		cooldown := newStubCooldown()
		require.NoError(t, cooldown.Mark(ctx, CooldownKey("Burnout recovery stories"), time.Hour))

		source := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Burnout recovery stories", Engagement: 8000},
			{Title: "Meditation for beginners", Engagement: 40},
		}}
		svc := NewService([]Source{source}, NewHistoryStore(), NewBlocklistStore(), cooldown, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Meditation for beginners", topic.Title)
	})

	t.Run("cooldown built from a nil redis client is inert", func(t *testing.T) {
		source := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Managing anxiety without a therapist nearby", Engagement: 300},
		}}
		cooldown := NewRedisCooldown(nil)
		require.Nil(t, cooldown)
		svc := NewService([]Source{source}, NewHistoryStore(), NewBlocklistStore(), cooldown, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Managing anxiety without a therapist nearby", topic.Title)
	})

	t.Run("cooldown errors do not block selection", func(t *testing.T) {
		cooldown := newStubCooldown()
		cooldown.err = errors.New("redis down")

		source := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Mindfulness on a busy schedule", Engagement: 100},
		}}
		svc := NewService([]Source{source}, NewHistoryStore(), NewBlocklistStore(), cooldown, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Mindfulness on a busy schedule", topic.Title)
	})

	t.Run("tolerates one failing source", func(t *testing.T) {
		failing := &stubSource{name: "google-trends", err: errors.New("feed gone")}
		working := &stubSource{name: "reddit", candidates: []Candidate{
			{Title: "Therapy myths, debunked", Engagement: 300},
		}}
		svc := NewService([]Source{failing, working}, NewHistoryStore(), NewBlocklistStore(), nil, 30, testLogger())

		topic, err := svc.SelectDaily(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "Therapy myths, debunked", topic.Title)
	})

	t.Run("all sources failing returns joined errors", func(t *testing.T) {
		a := &stubSource{name: "reddit", err: errors.New("rate limited")}
		b := &stubSource{name: "google-trends", err: errors.New("feed gone")}
		svc := NewService([]Source{a, b}, NewHistoryStore(), NewBlocklistStore(), nil, 30, testLogger())

		_, err := svc.SelectDaily(ctx, "2026-08-30")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
		assert.Contains(t, err.Error(), "feed gone")
	})

	t.Run("no eligible candidates returns not found", func(t *testing.T) {
		source := &stubSource{name: "reddit", candidates: []Candidate{}}
		svc := NewService([]Source{source}, NewHistoryStore(), NewBlocklistStore(), nil, 30, testLogger())

		_, err := svc.SelectDaily(ctx, "2026-08-30")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
