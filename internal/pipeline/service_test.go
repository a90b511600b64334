package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcast/internal/events"
	"mindcast/internal/publisher"
	"mindcast/internal/script"
	"mindcast/internal/trends"
	"mindcast/internal/video"
	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
	"mindcast/pkg/requestcontext"
)

// stubStages implements all four stage dependencies with canned results.
type stubStages struct {
	topicErr    error
	scriptErr   error
	artifactErr error
	postErr     error

	selectCalls   int
	generateCalls int
	produceCalls  int
	publishCalls  int

	publishedURL     string
	publishedCaption string
}

func (s *stubStages) SelectDaily(_ context.Context, date string) (*trends.Topic, error) {
	s.selectCalls++
	if s.topicErr != nil {
		return nil, s.topicErr
	}
	return &trends.Topic{ID: domain.NewTopicID(), Title: "Burnout warning signs", SelectedFor: date}, nil
}

func (s *stubStages) Generate(_ context.Context, topic *trends.Topic) (*script.Script, error) {
	s.generateCalls++
	if s.scriptErr != nil {
		return nil, s.scriptErr
	}
	return &script.Script{
		TopicID:  topic.ID,
		Title:    topic.Title,
		Hook:     "hook",
		Body:     "body",
		CTA:      "cta",
		Caption:  "caption",
		Hashtags: []string{"#mentalhealth", "#selfcare", "#burnout"},
	}, nil
}

func (s *stubStages) Produce(_ context.Context, _ time.Time, _, _ string) (*video.Artifact, error) {
	s.produceCalls++
	if s.artifactErr != nil {
		return nil, s.artifactErr
	}
	return &video.Artifact{Path: "/work/mindcast-2026-06-01.mp4", DurationSeconds: 45}, nil
}

func (s *stubStages) Publish(_ context.Context, _ time.Time, videoURL, caption string) (*publisher.Post, error) {
	s.publishCalls++
	s.publishedURL = videoURL
	s.publishedCaption = caption
	if s.postErr != nil {
		return nil, s.postErr
	}
	return &publisher.Post{MediaID: "m-1", ContainerID: "c-1", Caption: caption}, nil
}

func newPipelineService(store Store, stages *stubStages, pub *events.Publisher) *Service {
	return NewService(store, stages, stages, stages, stages, pub, nil,
		time.Minute, "https://mindcast.example", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func drainEvents(pub *events.Publisher) []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-pub.Inbox():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestService_Execute(t *testing.T) {
	date := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

	t.Run("full run succeeds", func(t *testing.T) {
		store := NewInMemoryStore()
		stages := &stubStages{}
		pub := events.NewPublisher(64, nil, nil)
		svc := newPipelineService(store, stages, pub)

		run, err := svc.Execute(context.Background(), date, false)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, run.Status)
		assert.Equal(t, "2026-06-01", run.Date)
		require.NotNil(t, run.Topic)
		require.NotNil(t, run.Script)
		require.NotNil(t, run.Artifact)
		require.NotNil(t, run.Post)
		for _, record := range run.Stages {
			assert.Equal(t, domain.StatusSucceeded, record.Status, record.Stage)
			assert.NotNil(t, record.StartedAt)
			assert.NotNil(t, record.FinishedAt)
		}

		assert.Equal(t, "https://mindcast.example/artifacts/mindcast-2026-06-01.mp4", stages.publishedURL)
		assert.Contains(t, stages.publishedCaption, "#mentalhealth #selfcare #burnout")

		stored, err := store.Get(context.Background(), run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, stored.Status)

		drained := drainEvents(pub)
		var types []events.Type
		for _, e := range drained {
			types = append(types, e.Type)
		}
		assert.Equal(t, events.TypeRunStarted, types[0])
		assert.Equal(t, events.TypeRunSucceeded, types[len(types)-1])
		assert.Contains(t, types, events.TypePostPublished)
	})

	t.Run("stage timestamps advance past a pinned context time", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := newPipelineService(store, &stubStages{}, nil)

		// Admin requests carry a frozen request time; stage records must
		// still reflect when each stage actually ran.
		pinned := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(context.Background(), pinned)

		run, err := svc.Execute(ctx, date, false)
		require.NoError(t, err)

		assert.Equal(t, pinned, run.CreatedAt)
		assert.True(t, run.UpdatedAt.After(pinned))
		for _, record := range run.Stages {
			require.NotNil(t, record.StartedAt, record.Stage)
			require.NotNil(t, record.FinishedAt, record.Stage)
			assert.True(t, record.StartedAt.After(pinned), record.Stage)
			assert.False(t, record.FinishedAt.Before(*record.StartedAt), record.Stage)
		}
	})

	t.Run("second run for a done date conflicts", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := newPipelineService(store, &stubStages{}, nil)

		_, err := svc.Execute(context.Background(), date, false)
		require.NoError(t, err)

		_, err = svc.Execute(context.Background(), date, false)
		require.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("force bypasses the conflict", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := newPipelineService(store, &stubStages{}, nil)

		_, err := svc.Execute(context.Background(), date, false)
		require.NoError(t, err)

		run, err := svc.Execute(context.Background(), date, true)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, run.Status)
	})

	t.Run("failed run does not block a new attempt", func(t *testing.T) {
		store := NewInMemoryStore()
		failing := &stubStages{scriptErr: errors.New("llm down")}
		svc := newPipelineService(store, failing, nil)

		_, err := svc.Execute(context.Background(), date, false)
		require.Error(t, err)

		svc = newPipelineService(store, &stubStages{}, nil)
		run, err := svc.Execute(context.Background(), date, false)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, run.Status)
	})

	t.Run("stage failure stops the run", func(t *testing.T) {
		store := NewInMemoryStore()
		stages := &stubStages{artifactErr: errors.New("ffmpeg exploded")}
		svc := newPipelineService(store, stages, nil)

		run, err := svc.Execute(context.Background(), date, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stage video")
		assert.Equal(t, domain.StatusFailed, run.Status)

		videoRecord := run.StageRecordFor(domain.StageVideo)
		assert.Equal(t, domain.StatusFailed, videoRecord.Status)
		assert.Contains(t, videoRecord.Error, "ffmpeg exploded")
		assert.Equal(t, domain.StatusPending, run.StageRecordFor(domain.StagePublish).Status)
		assert.Zero(t, stages.publishCalls)

		stored, err := store.Get(context.Background(), run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, stored.Status)
	})
}

func TestService_Resume(t *testing.T) {
	date := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

	t.Run("continues from the failed stage", func(t *testing.T) {
		store := NewInMemoryStore()
		stages := &stubStages{artifactErr: errors.New("ffmpeg exploded")}
		svc := newPipelineService(store, stages, nil)

		failed, err := svc.Execute(context.Background(), date, false)
		require.Error(t, err)

		stages.artifactErr = nil
		run, err := svc.Resume(context.Background(), failed.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, run.Status)
		assert.Equal(t, failed.ID, run.ID)

		// Earlier stages are not repeated.
		assert.Equal(t, 1, stages.selectCalls)
		assert.Equal(t, 1, stages.generateCalls)
		assert.Equal(t, 2, stages.produceCalls)
		assert.Equal(t, 1, stages.publishCalls)
	})

	t.Run("succeeded run cannot resume", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := newPipelineService(store, &stubStages{}, nil)

		run, err := svc.Execute(context.Background(), date, false)
		require.NoError(t, err)

		_, err = svc.Resume(context.Background(), run.ID)
		require.ErrorIs(t, err, sentinel.ErrInvalidState)
	})

	t.Run("unknown run", func(t *testing.T) {
		svc := newPipelineService(NewInMemoryStore(), &stubStages{}, nil)
		_, err := svc.Resume(context.Background(), domain.NewRunID())
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
