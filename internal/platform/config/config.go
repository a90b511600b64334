// Package config builds the service configuration from the environment so
// main stays lean. A local .env file is honored when present, mirroring how
// the bot was originally run from cron with a dotenv file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	AdminToken string
	// PublicBaseURL is the externally reachable base URL for rendered
	// artifacts; Instagram fetches videos from here.
	PublicBaseURL string
}

// Postgres captures database configuration. An empty URL selects the
// in-memory stores (dev and tests).
type Postgres struct {
	URL string
}

// Redis captures cache configuration. An empty URL disables Redis; topic
// cooldown and quota fall back to store-backed paths.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures event sink configuration. No brokers means events stay on
// the in-process sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// OpenAI captures LLM and TTS configuration.
type OpenAI struct {
	APIKey    string
	BaseURL   string
	ChatModel string
	TTSModel  string
	TTSVoice  string
}

// Instagram captures Graph API configuration.
type Instagram struct {
	BaseURL     string
	UserID      string
	AccessToken string
}

// Trends captures topic source configuration.
type Trends struct {
	RedditBaseURL string
	Subreddits    []string
	UserAgent     string
	MinScore      int
	TrendsBaseURL string
	CooldownDays  int
}

// Video captures rendering configuration.
type Video struct {
	FFmpegPath  string
	FFprobePath string
	AssetsDir   string
	WorkDir     string
	Width       int
	Height      int
}

// Schedule captures the daily trigger configuration.
type Schedule struct {
	Enabled  bool
	PostTime string // "HH:MM" wall clock
	Timezone string
}

// Publisher captures posting limits.
type Publisher struct {
	DailyQuota   int
	PollInterval time.Duration
	PollAttempts int
}

// Pipeline captures orchestration limits.
type Pipeline struct {
	StageTimeout time.Duration
}

// Config is the root configuration assembled by FromEnv.
type Config struct {
	Server    Server
	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	OpenAI    OpenAI
	Instagram Instagram
	Trends    Trends
	Video     Video
	Schedule  Schedule
	Publisher Publisher
	Pipeline  Pipeline
}

// FromEnv builds a Config from environment variables, loading a .env file
// first when one exists. Invalid numeric or duration values fall back to
// their defaults rather than failing startup.
func FromEnv() Config {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	return Config{
		Server: Server{
			Addr:          envStr("MINDCAST_ADDR", ":8080"),
			AdminToken:    os.Getenv("MINDCAST_ADMIN_TOKEN"),
			PublicBaseURL: envStr("MINDCAST_PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Postgres: Postgres{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envStr("KAFKA_EVENTS_TOPIC", "mindcast.pipeline.events"),
		},
		OpenAI: OpenAI{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			BaseURL:   envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			ChatModel: envStr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			TTSModel:  envStr("OPENAI_TTS_MODEL", "tts-1"),
			TTSVoice:  envStr("OPENAI_TTS_VOICE", "nova"),
		},
		Instagram: Instagram{
			BaseURL:     envStr("INSTAGRAM_BASE_URL", "https://graph.facebook.com/v21.0"),
			UserID:      os.Getenv("INSTAGRAM_USER_ID"),
			AccessToken: os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
		},
		Trends: Trends{
			RedditBaseURL: envStr("REDDIT_BASE_URL", "https://www.reddit.com"),
			Subreddits:    envListDefault("REDDIT_SUBREDDITS", []string{"mentalhealth", "selfimprovement"}),
			UserAgent:     envStr("REDDIT_USER_AGENT", "mindcast/1.0"),
			MinScore:      envInt("REDDIT_MIN_SCORE", 50),
			TrendsBaseURL: envStr("GOOGLE_TRENDS_BASE_URL", "https://trends.google.com"),
			CooldownDays:  envInt("TOPIC_COOLDOWN_DAYS", 30),
		},
		Video: Video{
			FFmpegPath:  envStr("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: envStr("FFPROBE_PATH", "ffprobe"),
			AssetsDir:   envStr("VIDEO_ASSETS_DIR", "resources"),
			WorkDir:     envStr("VIDEO_WORK_DIR", "work"),
			Width:       envInt("VIDEO_WIDTH", 1080),
			Height:      envInt("VIDEO_HEIGHT", 1920),
		},
		Schedule: Schedule{
			Enabled:  envStr("SCHEDULE_ENABLED", "true") == "true",
			PostTime: envStr("SCHEDULE_POST_TIME", "09:00"),
			Timezone: envStr("SCHEDULE_TIMEZONE", "UTC"),
		},
		Publisher: Publisher{
			DailyQuota:   envInt("PUBLISH_DAILY_QUOTA", 1),
			PollInterval: envDuration("PUBLISH_POLL_INTERVAL", 10*time.Second),
			PollAttempts: envInt("PUBLISH_POLL_ATTEMPTS", 30),
		},
		Pipeline: Pipeline{
			StageTimeout: envDuration("PIPELINE_STAGE_TIMEOUT", 10*time.Minute),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// envList parses a comma-separated environment value, dropping empty items.
func envList(key string) []string {
	return envListDefault(key, nil)
}

func envListDefault(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
