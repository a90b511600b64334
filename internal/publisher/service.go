package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mindcast/pkg/platform/circuit"
	"mindcast/pkg/platform/sentinel"
)

// Service publishes a rendered video to Instagram: create a media
// container, wait for ingestion, then flip it live. A daily quota caps how
// many posts go out per day, and a circuit breaker shields the graph API
// when it is failing.
type Service struct {
	client       GraphClient
	quota        QuotaStore
	breaker      *circuit.Breaker
	dailyQuota   int
	pollInterval time.Duration
	pollAttempts int
	logger       *slog.Logger
}

// NewService constructs the publisher service.
func NewService(client GraphClient, quota QuotaStore, breaker *circuit.Breaker,
	dailyQuota int, pollInterval time.Duration, pollAttempts int, logger *slog.Logger) *Service {
	return &Service{
		client:       client,
		quota:        quota,
		breaker:      breaker,
		dailyQuota:   dailyQuota,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
		logger:       logger,
	}
}

// Publish uploads the video at videoURL and returns the published post.
//
// Errors: wrapped sentinel.ErrQuotaExceeded when the daily cap is reached;
// wrapped sentinel.ErrUnavailable when the circuit is open or the container
// never finished ingesting.
func (s *Service) Publish(ctx context.Context, date time.Time, videoURL, caption string) (*Post, error) {
	if s.breaker.IsOpen() {
		return nil, fmt.Errorf("instagram circuit open: %w", sentinel.ErrUnavailable)
	}

	day := date.Format("2006-01-02")
	allowed, err := s.quota.Allow(ctx, day, s.dailyQuota)
	if err != nil {
		return nil, fmt.Errorf("check publish quota: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("daily publish quota (%d) reached for %s: %w",
			s.dailyQuota, day, sentinel.ErrQuotaExceeded)
	}

	containerID, err := s.client.CreateContainer(ctx, videoURL, caption)
	if err != nil {
		s.recordFailure()
		s.releaseQuota(ctx, day)
		return nil, err
	}
	s.logger.Info("media container created", "container_id", containerID)

	if err := s.waitForContainer(ctx, containerID); err != nil {
		s.recordFailure()
		s.releaseQuota(ctx, day)
		return nil, err
	}

	mediaID, err := s.client.Publish(ctx, containerID)
	if err != nil {
		s.recordFailure()
		s.releaseQuota(ctx, day)
		return nil, err
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("instagram circuit closed", "breaker", s.breaker.Name())
	}

	post := &Post{
		MediaID:     mediaID,
		ContainerID: containerID,
		Caption:     caption,
		PublishedAt: time.Now(),
	}
	s.logger.Info("post published", "media_id", post.MediaID)
	return post, nil
}

// waitForContainer polls until the container finishes ingesting, up to
// pollAttempts polls spaced pollInterval apart.
func (s *Service) waitForContainer(ctx context.Context, containerID string) error {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.pollInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		status, err := s.client.ContainerStatus(ctx, containerID)
		if err != nil {
			return err
		}
		switch status {
		case containerStatusFinished:
			return nil
		case containerStatusError:
			return fmt.Errorf("container %s failed ingestion", containerID)
		default:
			s.logger.Debug("container not ready", "container_id", containerID, "status", status)
		}
	}
	return fmt.Errorf("container %s not finished after %d polls: %w",
		containerID, s.pollAttempts, sentinel.ErrUnavailable)
}

// releaseQuota hands the reserved slot back after a failed publish so a
// same-day resume can retry. Quota covers published posts, not attempts.
func (s *Service) releaseQuota(ctx context.Context, day string) {
	if err := s.quota.Release(ctx, day); err != nil {
		s.logger.Error("release publish quota", "day", day, "error", err)
	}
}

func (s *Service) recordFailure() {
	if useFallback, change := s.breaker.RecordFailure(); useFallback && change.Opened {
		s.logger.Error("instagram circuit opened", "breaker", s.breaker.Name())
	}
}
