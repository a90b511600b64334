package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		store := NewInMemoryStore()
		run := NewRun("2026-06-01", now)
		require.NoError(t, store.Create(ctx, run))

		got, err := store.Get(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
		assert.Len(t, got.Stages, 4)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("create twice conflicts", func(t *testing.T) {
		store := NewInMemoryStore()
		run := NewRun("2026-06-01", now)
		require.NoError(t, store.Create(ctx, run))
		require.ErrorIs(t, store.Create(ctx, run), sentinel.ErrConflict)
	})

	t.Run("update missing run", func(t *testing.T) {
		store := NewInMemoryStore()
		require.ErrorIs(t, store.Update(ctx, NewRun("2026-06-01", now)), sentinel.ErrNotFound)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		store := NewInMemoryStore()
		run := NewRun("2026-06-01", now)
		require.NoError(t, store.Create(ctx, run))

		got, err := store.Get(ctx, run.ID)
		require.NoError(t, err)
		got.Stages[0].Status = domain.StatusFailed

		again, err := store.Get(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, again.Stages[0].Status)
	})

	t.Run("list newest first with limit", func(t *testing.T) {
		store := NewInMemoryStore()
		for i := 0; i < 3; i++ {
			run := NewRun("2026-06-0"+string(rune('1'+i)), now.AddDate(0, 0, i))
			require.NoError(t, store.Create(ctx, run))
		}

		runs, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "2026-06-03", runs[0].Date)
		assert.Equal(t, "2026-06-02", runs[1].Date)
	})

	t.Run("succeeded for date", func(t *testing.T) {
		store := NewInMemoryStore()
		run := NewRun("2026-06-01", now)
		require.NoError(t, store.Create(ctx, run))

		done, err := store.SucceededForDate(ctx, "2026-06-01")
		require.NoError(t, err)
		assert.False(t, done)

		run.Status = domain.StatusSucceeded
		require.NoError(t, store.Update(ctx, run))

		done, err = store.SucceededForDate(ctx, "2026-06-01")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		store := NewInMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				run := NewRun("2026-06-01", now)
				assert.NoError(t, store.Create(ctx, run))
				run.Status = domain.StatusRunning
				assert.NoError(t, store.Update(ctx, run))
			}()
		}
		wg.Wait()

		runs, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, runs, 20)
	})
}
