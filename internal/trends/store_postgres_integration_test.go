//go:build integration

package trends_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mindcast/internal/trends"
	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
	"mindcast/pkg/testutil/containers"
)

type PostgresHistorySuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	history   *trends.PostgresHistoryStore
	blocklist *trends.PostgresBlocklistStore
}

func TestPostgresHistorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresHistorySuite))
}

func (s *PostgresHistorySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.history = trends.NewPostgresHistoryStore(s.postgres.DB)
	s.blocklist = trends.NewPostgresBlocklistStore(s.postgres.DB)
}

func (s *PostgresHistorySuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "topic_history", "topic_blocklist")
	s.Require().NoError(err)
}

func storedTopic(title, date string, fetchedAt time.Time) trends.Topic {
	return trends.Topic{
		ID:          domain.NewTopicID(),
		Title:       title,
		Summary:     "summary for " + title,
		Source:      "reddit",
		SourceURL:   "https://reddit.example/post",
		Score:       4.2,
		Keywords:    []string{"burnout", "sleep"},
		SelectedFor: date,
		FetchedAt:   fetchedAt,
	}
}

func (s *PostgresHistorySuite) TestRecordAndListSince() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	old := storedTopic("old topic", "2026-04-01", now.AddDate(0, 0, -40))
	recent := storedTopic("recent topic", "2026-05-28", now.AddDate(0, 0, -2))
	s.Require().NoError(s.history.Record(ctx, old))
	s.Require().NoError(s.history.Record(ctx, recent))

	got, err := s.history.ListSince(ctx, now.AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("recent topic", got[0].Title)
	s.Equal(recent.ID, got[0].ID)
	s.Equal([]string{"burnout", "sleep"}, got[0].Keywords)
	s.WithinDuration(recent.FetchedAt, got[0].FetchedAt, time.Millisecond)
}

func (s *PostgresHistorySuite) TestRecentOrdersNewestFirst() {
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		topic := storedTopic("topic", "2026-05-28", now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.history.Record(ctx, topic))
	}

	got, err := s.history.Recent(ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.True(got[0].FetchedAt.After(got[1].FetchedAt))
	s.True(got[1].FetchedAt.After(got[2].FetchedAt))
}

func (s *PostgresHistorySuite) TestBlocklistRoundTrip() {
	ctx := context.Background()

	s.Require().NoError(s.blocklist.Add(ctx, "Crash Diets"))
	// Adding the same normalized phrase twice is a no-op.
	s.Require().NoError(s.blocklist.Add(ctx, "crash diets"))

	phrases, err := s.blocklist.List(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"crash diets"}, phrases)

	s.Require().NoError(s.blocklist.Remove(ctx, "crash diets"))
	s.Require().ErrorIs(s.blocklist.Remove(ctx, "crash diets"), sentinel.ErrNotFound)
}
