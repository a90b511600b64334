//go:build integration

package trends_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mindcast/internal/trends"
	"mindcast/pkg/testutil/containers"
)

type RedisCooldownSuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	cooldown trends.Cooldown
}

func TestRedisCooldownSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCooldownSuite))
}

func (s *RedisCooldownSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cooldown = trends.NewRedisCooldown(s.redis.Platform())
}

func (s *RedisCooldownSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCooldownSuite) TestMarkAndSeen() {
	ctx := context.Background()

	seen, err := s.cooldown.Seen(ctx, "burnout-warning-signs")
	s.Require().NoError(err)
	s.False(seen)

	s.Require().NoError(s.cooldown.Mark(ctx, "burnout-warning-signs", time.Hour))

	seen, err = s.cooldown.Seen(ctx, "burnout-warning-signs")
	s.Require().NoError(err)
	s.True(seen)
}

func (s *RedisCooldownSuite) TestMarkExpires() {
	ctx := context.Background()

	s.Require().NoError(s.cooldown.Mark(ctx, "short-lived", 100*time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	seen, err := s.cooldown.Seen(ctx, "short-lived")
	s.Require().NoError(err)
	s.False(seen)
}
