// Command server runs the daily content pipeline and its admin API.
//
// With -once the pipeline executes a single run for today and the process
// exits; this is how a cron-style deployment uses the binary. Without it
// the server stays up, fires on the configured schedule, and serves the
// admin API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"mindcast/internal/events"
	"mindcast/internal/pipeline"
	"mindcast/internal/platform/config"
	"mindcast/internal/platform/httpserver"
	"mindcast/internal/platform/logger"
	"mindcast/internal/platform/metrics"
	platformpostgres "mindcast/internal/platform/postgres"
	platformredis "mindcast/internal/platform/redis"
	"mindcast/internal/publisher"
	"mindcast/internal/script"
	httptransport "mindcast/internal/transport/http"
	"mindcast/internal/trends"
	"mindcast/internal/video"
	"mindcast/pkg/platform/circuit"
	"mindcast/pkg/platform/sentinel"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline once for today and exit")
	force := flag.Bool("force", false, "with -once, run even if today already succeeded")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *once, *force); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, once, force bool) error {
	// Postgres is optional; without it everything runs on in-memory stores.
	var db *sql.DB
	if cfg.Postgres.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := platformpostgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info("postgres connected")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	processMetrics := metrics.New()
	pipelineMetrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)

	// Events fan out to Kafka when brokers are configured, otherwise stay
	// on an in-process ring for the admin API and tests.
	var sink events.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		sink = kafkaSink
		log.Info("kafka sink ready", "topic", cfg.Kafka.Topic)
	} else {
		sink = events.NewMemorySink(256)
		log.Info("events staying in process, no kafka brokers configured")
	}
	eventPub := events.NewPublisher(256, processMetrics, log)
	eventWorker := events.NewWorker(eventPub.Inbox(), sink, log)

	// Stores: postgres twins when a database is present.
	var (
		runStore  pipeline.Store
		history   trends.HistoryStore
		blocklist trends.BlocklistStore
	)
	if db != nil {
		runStore = pipeline.NewPostgresStore(db)
		history = trends.NewPostgresHistoryStore(db)
		blocklist = trends.NewPostgresBlocklistStore(db)
	} else {
		runStore = pipeline.NewInMemoryStore()
		history = trends.NewHistoryStore()
		blocklist = trends.NewBlocklistStore()
	}

	cooldown := trends.NewRedisCooldown(redisClient)

	trendsService := trends.NewService(
		[]trends.Source{
			trends.NewRedditSource(cfg.Trends.RedditBaseURL, cfg.Trends.Subreddits, cfg.Trends.UserAgent, cfg.Trends.MinScore),
			trends.NewGoogleTrendsSource(cfg.Trends.TrendsBaseURL, "US"),
		},
		history, blocklist, cooldown, cfg.Trends.CooldownDays, log)

	scriptService := script.NewService(
		script.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.ChatModel),
		circuit.New("openai-chat"),
		cfg.OpenAI.ChatModel, log)

	videoService := video.NewService(
		video.NewOpenAITTS(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.TTSModel, cfg.OpenAI.TTSVoice),
		video.NewRenderer(cfg.Video.FFmpegPath, cfg.Video.FFprobePath, cfg.Video.Width, cfg.Video.Height, log),
		cfg.Video.AssetsDir, cfg.Video.WorkDir, log)

	var quota publisher.QuotaStore = publisher.NewInMemoryQuotaStore()
	if redisClient != nil {
		quota = publisher.NewRedisQuotaStore(redisClient)
	}
	publisherService := publisher.NewService(
		publisher.NewInstagramClient(cfg.Instagram.BaseURL, cfg.Instagram.UserID, cfg.Instagram.AccessToken),
		quota, circuit.New("instagram"),
		cfg.Publisher.DailyQuota, cfg.Publisher.PollInterval, cfg.Publisher.PollAttempts, log)

	pipelineService := pipeline.NewService(runStore, trendsService, scriptService,
		videoService, publisherService, eventPub, pipelineMetrics,
		cfg.Pipeline.StageTimeout, cfg.Server.PublicBaseURL, log)

	if once {
		// The worker gets its own lifetime so queued events still flush
		// after the run finishes.
		workerCtx, stopWorker := context.WithCancel(context.Background())
		workerDone := make(chan struct{})
		go func() {
			eventWorker.Run(workerCtx)
			close(workerDone)
		}()

		err := runOnce(ctx, pipelineService, log, force)
		stopWorker()
		<-workerDone
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		eventWorker.Run(ctx)
		return nil
	})

	if cfg.Schedule.Enabled {
		scheduler, err := pipeline.NewScheduler(pipelineService, cfg.Schedule.PostTime, cfg.Schedule.Timezone, log)
		if err != nil {
			return fmt.Errorf("build scheduler: %w", err)
		}
		group.Go(func() error {
			if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler: %w", err)
			}
			return nil
		})
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		AdminToken: cfg.Server.AdminToken,
		Logger:     log,
		Metrics:    processMetrics,
		Public: []httptransport.Registrar{
			httptransport.NewSystemHandler(db, redisClient),
			httptransport.NewArtifactsHandler(cfg.Video.WorkDir),
		},
		Admin: []httptransport.Registrar{
			httptransport.NewRunsHandler(pipelineService, runStore, log),
			httptransport.NewTopicsHandler(history, blocklist, log),
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	group.Go(func() error {
		log.Info("admin api listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// runOnce drives a single pipeline run for today, for cron deployments.
func runOnce(ctx context.Context, service *pipeline.Service, log *slog.Logger, force bool) error {
	run, err := service.Execute(ctx, time.Now(), force)
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		log.Info("today already has a succeeded run, nothing to do")
		return nil
	case err != nil:
		return fmt.Errorf("pipeline run: %w", err)
	default:
		log.Info("pipeline run finished", "run_id", run.ID, "date", run.Date)
		return nil
	}
}
