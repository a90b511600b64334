package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"mindcast/internal/events"
	"mindcast/internal/publisher"
	"mindcast/internal/script"
	"mindcast/internal/trends"
	"mindcast/internal/video"
	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
	"mindcast/pkg/requestcontext"
)

// Stage dependencies are interfaces so tests can substitute each step.
type (
	// TopicSelector picks and records the day's topic.
	TopicSelector interface {
		SelectDaily(ctx context.Context, date string) (*trends.Topic, error)
	}

	// ScriptGenerator writes a validated narration for a topic.
	ScriptGenerator interface {
		Generate(ctx context.Context, topic *trends.Topic) (*script.Script, error)
	}

	// VideoProducer renders the narration into a video artifact.
	VideoProducer interface {
		Produce(ctx context.Context, date time.Time, title, narration string) (*video.Artifact, error)
	}

	// PostPublisher pushes the artifact to the social platform.
	PostPublisher interface {
		Publish(ctx context.Context, date time.Time, videoURL, caption string) (*publisher.Post, error)
	}
)

// Service drives a run through the four stages in order, persisting after
// every transition so a crash or failure resumes instead of starting over.
type Service struct {
	store         Store
	topics        TopicSelector
	scripts       ScriptGenerator
	videos        VideoProducer
	posts         PostPublisher
	events        *events.Publisher
	metrics       *Metrics
	stageTimeout  time.Duration
	publicBaseURL string
	logger        *slog.Logger
}

// NewService constructs the pipeline service. publicBaseURL is the address
// under which rendered artifacts are served; the publish stage hands
// {publicBaseURL}/artifacts/{file} to the social platform.
func NewService(store Store, topics TopicSelector, scripts ScriptGenerator,
	videos VideoProducer, posts PostPublisher, eventPub *events.Publisher,
	metrics *Metrics, stageTimeout time.Duration, publicBaseURL string,
	logger *slog.Logger) *Service {
	if stageTimeout <= 0 {
		stageTimeout = 10 * time.Minute
	}
	return &Service{
		store:         store,
		topics:        topics,
		scripts:       scripts,
		videos:        videos,
		posts:         posts,
		events:        eventPub,
		metrics:       metrics,
		stageTimeout:  stageTimeout,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Execute starts a fresh run for the given date and drives it to completion.
// One succeeded run per date: unless force is set, a second Execute for a
// date that already has a succeeded run fails with sentinel.ErrConflict.
// A previous failed run for the date does not block a new one.
func (s *Service) Execute(ctx context.Context, date time.Time, force bool) (*Run, error) {
	day := date.Format("2006-01-02")

	if !force {
		done, err := s.store.SucceededForDate(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("check existing runs: %w", err)
		}
		if done {
			return nil, fmt.Errorf("a run already succeeded for %s: %w", day, sentinel.ErrConflict)
		}
	}

	now := requestcontext.Now(ctx)
	run := NewRun(day, now)
	ctx = requestcontext.WithRunID(ctx, run.ID)

	if err := s.store.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	s.emit(ctx, run, "", events.TypeRunStarted, map[string]string{"date": day})
	s.logger.Info("run started", "run_id", run.ID, "date", day, "force", force)

	return run, s.advance(ctx, run)
}

// Resume continues a failed run from its first incomplete stage, reusing
// the stage outputs that already succeeded.
//
// Errors: wrapped sentinel.ErrNotFound when the run does not exist; wrapped
// sentinel.ErrInvalidState when the run is not in a failed state.
func (s *Service) Resume(ctx context.Context, id domain.RunID) (*Run, error) {
	run, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.StatusFailed {
		return nil, fmt.Errorf("run %s is %s, only failed runs resume: %w",
			run.ID, run.Status, sentinel.ErrInvalidState)
	}

	ctx = requestcontext.WithRunID(ctx, run.ID)
	stage, _ := run.FirstIncompleteStage()
	s.logger.Info("run resumed", "run_id", run.ID, "date", run.Date, "stage", stage)

	return run, s.advance(ctx, run)
}

// advance drives the run from its first incomplete stage to the end.
func (s *Service) advance(ctx context.Context, run *Run) error {
	run.Status = domain.StatusRunning
	if err := s.persist(ctx, run); err != nil {
		return err
	}

	for {
		stage, ok := run.FirstIncompleteStage()
		if !ok {
			break
		}
		if err := s.runStage(ctx, run, stage); err != nil {
			run.Status = domain.StatusFailed
			if perr := s.persist(ctx, run); perr != nil {
				s.logger.Error("persist failed run", "run_id", run.ID, "error", perr)
			}
			s.metrics.ObserveRun(domain.StatusFailed)
			s.emit(ctx, run, stage, events.TypeRunFailed, map[string]string{"error": err.Error()})
			s.logger.Error("run failed", "run_id", run.ID, "stage", stage, "error", err)
			return fmt.Errorf("stage %s: %w", stage, err)
		}
	}

	run.Status = domain.StatusSucceeded
	if err := s.persist(ctx, run); err != nil {
		return err
	}
	s.metrics.ObserveRun(domain.StatusSucceeded)
	s.emit(ctx, run, "", events.TypeRunSucceeded, nil)
	s.logger.Info("run succeeded", "run_id", run.ID, "date", run.Date)
	return nil
}

func (s *Service) runStage(ctx context.Context, run *Run, stage domain.Stage) error {
	record := run.StageRecordFor(stage)
	if record == nil {
		return fmt.Errorf("run %s has no record for stage %s", run.ID, stage)
	}

	// Stage timestamps come from the wall clock, not the request-scoped
	// time: a stage runs for minutes while the context time stays pinned
	// at request arrival.
	startedAt := time.Now()
	record.Status = domain.StatusRunning
	record.StartedAt = &startedAt
	record.FinishedAt = nil
	record.Error = ""
	if err := s.persist(ctx, run); err != nil {
		return err
	}
	s.emit(ctx, run, stage, events.TypeStageStarted, nil)

	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	err := s.executeStage(stageCtx, run, stage)
	cancel()

	finishedAt := time.Now()
	s.metrics.ObserveStage(stage, finishedAt.Sub(startedAt), err)
	record.FinishedAt = &finishedAt

	if err != nil {
		record.Status = domain.StatusFailed
		record.Error = err.Error()
		s.emit(ctx, run, stage, events.TypeStageFailed, map[string]string{"error": err.Error()})
		return err
	}

	record.Status = domain.StatusSucceeded
	if err := s.persist(ctx, run); err != nil {
		return err
	}
	s.emit(ctx, run, stage, events.TypeStageSucceeded, nil)
	return nil
}

func (s *Service) executeStage(ctx context.Context, run *Run, stage domain.Stage) error {
	switch stage {
	case domain.StageTrends:
		topic, err := s.topics.SelectDaily(ctx, run.Date)
		if err != nil {
			return err
		}
		run.Topic = topic
		return nil

	case domain.StageScript:
		if run.Topic == nil {
			return fmt.Errorf("no topic on run: %w", sentinel.ErrInvalidState)
		}
		sc, err := s.scripts.Generate(ctx, run.Topic)
		if err != nil {
			return err
		}
		run.Script = sc
		return nil

	case domain.StageVideo:
		if run.Script == nil {
			return fmt.Errorf("no script on run: %w", sentinel.ErrInvalidState)
		}
		date, err := time.Parse("2006-01-02", run.Date)
		if err != nil {
			return fmt.Errorf("parse run date %q: %w", run.Date, err)
		}
		artifact, err := s.videos.Produce(ctx, date, run.Script.Title, run.Script.Narration())
		if err != nil {
			return err
		}
		run.Artifact = artifact
		return nil

	case domain.StagePublish:
		if run.Script == nil || run.Artifact == nil {
			return fmt.Errorf("no artifact on run: %w", sentinel.ErrInvalidState)
		}
		date, err := time.Parse("2006-01-02", run.Date)
		if err != nil {
			return fmt.Errorf("parse run date %q: %w", run.Date, err)
		}
		post, err := s.posts.Publish(ctx, date, s.artifactURL(run.Artifact.Path), buildCaption(run.Script))
		if err != nil {
			return err
		}
		run.Post = post
		s.emit(ctx, run, stage, events.TypePostPublished, map[string]string{"media_id": post.MediaID})
		return nil

	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}

func (s *Service) artifactURL(path string) string {
	return s.publicBaseURL + "/artifacts/" + filepath.Base(path)
}

func buildCaption(sc *script.Script) string {
	if len(sc.Hashtags) == 0 {
		return sc.Caption
	}
	return sc.Caption + "\n\n" + strings.Join(sc.Hashtags, " ")
}

func (s *Service) persist(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, run); err != nil {
		return fmt.Errorf("persist run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, run *Run, stage domain.Stage, typ events.Type, detail map[string]string) {
	if s.events == nil {
		return
	}
	// Timestamp stays zero so the publisher stamps the wall clock.
	s.events.Emit(ctx, events.Event{
		RunID:  run.ID,
		Stage:  stage,
		Type:   typ,
		Detail: detail,
	})
}
