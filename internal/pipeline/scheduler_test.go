package pipeline

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	t.Run("rejects bad post time", func(t *testing.T) {
		_, err := NewScheduler(nil, "25:99", "UTC", slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.Error(t, err)
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		_, err := NewScheduler(nil, "19:00", "Mars/Olympus", slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.Error(t, err)
	})
}

func TestScheduler_NextFire(t *testing.T) {
	sched, err := NewScheduler(nil, "19:00", "UTC", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	t.Run("later today", func(t *testing.T) {
		now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
		next := sched.nextFire(now)
		assert.Equal(t, time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC), next)
	})

	t.Run("already passed rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)
		next := sched.nextFire(now)
		assert.Equal(t, time.Date(2026, 6, 2, 19, 0, 0, 0, time.UTC), next)
	})

	t.Run("exact fire time rolls forward", func(t *testing.T) {
		now := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
		next := sched.nextFire(now)
		assert.Equal(t, time.Date(2026, 6, 2, 19, 0, 0, 0, time.UTC), next)
	})
}
