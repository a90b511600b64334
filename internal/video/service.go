package video

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Service produces the day's video: narration audio through TTS, then an
// ffmpeg composition over the picked assets.
type Service struct {
	tts       TTSClient
	renderer  *Renderer
	assetsDir string
	workDir   string
	logger    *slog.Logger
}

// NewService constructs the video service. Rendered files land in workDir.
func NewService(tts TTSClient, renderer *Renderer, assetsDir, workDir string, logger *slog.Logger) *Service {
	return &Service{
		tts:       tts,
		renderer:  renderer,
		assetsDir: assetsDir,
		workDir:   workDir,
		logger:    logger,
	}
}

// Produce renders the video for one day's script and returns the artifact.
// Re-running for the same date overwrites the previous output so a resumed
// run never accumulates stale files.
func (s *Service) Produce(ctx context.Context, date time.Time, title, narration string) (*Artifact, error) {
	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	audio, err := s.tts.Synthesize(ctx, narration)
	if err != nil {
		return nil, fmt.Errorf("synthesize narration: %w", err)
	}

	day := date.Format("2006-01-02")
	narrationPath := filepath.Join(s.workDir, day+"-narration.mp3")
	if err := os.WriteFile(narrationPath, audio, 0o644); err != nil {
		return nil, fmt.Errorf("write narration audio: %w", err)
	}
	defer os.Remove(narrationPath)

	assets, err := PickAssets(s.assetsDir, date)
	if err != nil {
		return nil, fmt.Errorf("pick assets: %w", err)
	}

	outputPath := filepath.Join(s.workDir, "mindcast-"+day+".mp4")
	duration, err := s.renderer.Render(ctx, RenderInput{
		NarrationPath:  narrationPath,
		BackgroundPath: assets.BackgroundPath,
		MusicPath:      assets.MusicPath,
		FontPath:       assets.FontPath,
		Title:          title,
		OutputPath:     outputPath,
	})
	if err != nil {
		return nil, err
	}

	artifact, err := describeArtifact(outputPath, duration, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("video rendered",
		"path", artifact.Path,
		"duration_seconds", artifact.DurationSeconds,
		"size_bytes", artifact.SizeBytes)
	return artifact, nil
}

func describeArtifact(path string, duration float64, now time.Time) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rendered file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat rendered file: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash rendered file: %w", err)
	}

	return &Artifact{
		Path:            path,
		DurationSeconds: duration,
		SizeBytes:       info.Size(),
		SHA256:          hex.EncodeToString(h.Sum(nil)),
		CreatedAt:       now,
	}, nil
}
