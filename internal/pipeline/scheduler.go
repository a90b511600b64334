package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mindcast/pkg/platform/sentinel"
)

// Runner is the slice of the pipeline service the scheduler drives.
type Runner interface {
	Execute(ctx context.Context, date time.Time, force bool) (*Run, error)
}

// Scheduler fires the pipeline once a day at the configured wall-clock time.
// The next fire time is recomputed after every run, so long runs and clock
// adjustments never drift the schedule.
type Scheduler struct {
	runner   Runner
	hour     int
	minute   int
	location *time.Location
	logger   *slog.Logger
}

// NewScheduler constructs a scheduler. postTime is "HH:MM" in the given
// IANA timezone.
func NewScheduler(runner Runner, postTime, timezone string, logger *slog.Logger) (*Scheduler, error) {
	parsed, err := time.Parse("15:04", postTime)
	if err != nil {
		return nil, fmt.Errorf("parse post time %q: %w", postTime, err)
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		runner:   runner,
		hour:     parsed.Hour(),
		minute:   parsed.Minute(),
		location: location,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is cancelled, firing the pipeline at each scheduled
// time. A run that conflicts with an already-succeeded day is skipped
// quietly; other failures are logged and the schedule continues.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := time.Now().In(s.location)
		next := s.nextFire(now)
		s.logger.Info("next scheduled run", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case fired := <-timer.C:
			s.fire(ctx, fired.In(s.location))
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	run, err := s.runner.Execute(ctx, now, false)
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		s.logger.Info("scheduled run skipped, day already done", "date", now.Format("2006-01-02"))
	case err != nil:
		s.logger.Error("scheduled run failed", "error", err)
	default:
		s.logger.Info("scheduled run finished", "run_id", run.ID)
	}
}

// nextFire returns the next occurrence of the configured wall-clock time
// strictly after now.
func (s *Scheduler) nextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
