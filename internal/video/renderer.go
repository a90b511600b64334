package video

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// endPadding keeps the video rolling briefly after the narration ends.
const endPadding = 0.8

// Renderer shells out to ffmpeg to compose the final vertical video.
type Renderer struct {
	ffmpegPath  string
	ffprobePath string
	width       int
	height      int
	logger      *slog.Logger
}

// NewRenderer constructs a renderer. Width and height are the output frame
// size, 1080x1920 for vertical short-form.
func NewRenderer(ffmpegPath, ffprobePath string, width, height int, logger *slog.Logger) *Renderer {
	return &Renderer{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		width:       width,
		height:      height,
		logger:      logger,
	}
}

// RenderInput names the files going into one composition.
type RenderInput struct {
	NarrationPath  string
	BackgroundPath string
	MusicPath      string
	FontPath       string
	Title          string
	OutputPath     string
}

// Render composes the background loop, narration, and optional music bed
// into OutputPath. The output runs as long as the narration plus a short
// tail.
func (r *Renderer) Render(ctx context.Context, in RenderInput) (float64, error) {
	narrationSecs, err := r.probeDuration(ctx, in.NarrationPath)
	if err != nil {
		return 0, fmt.Errorf("probe narration duration: %w", err)
	}
	total := narrationSecs + endPadding

	args := buildRenderArgs(in, total, r.width, r.height)
	r.logger.Debug("rendering video", "output", in.OutputPath, "duration", total)

	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffmpeg failed: %w: %s", err, tailLines(stderr.String(), 8))
	}
	return total, nil
}

// buildRenderArgs assembles the ffmpeg invocation. Kept separate from Render
// so the command shape is testable without ffmpeg installed.
func buildRenderArgs(in RenderInput, durationSecs float64, width, height int) []string {
	args := []string{
		"-y",
		"-stream_loop", "-1", "-i", in.BackgroundPath,
		"-i", in.NarrationPath,
	}
	if in.MusicPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", in.MusicPath)
	}

	vf := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		width, height, width, height)
	if in.FontPath != "" && in.Title != "" {
		vf += fmt.Sprintf(
			",drawtext=fontfile=%s:text='%s':fontcolor=white:fontsize=56:box=1:boxcolor=black@0.45:boxborderw=18:x=(w-text_w)/2:y=h*0.12",
			in.FontPath, escapeDrawtext(in.Title))
	}
	vf += "[vout]"

	var af string
	if in.MusicPath != "" {
		af = "[2:a]volume=0.12[m];[1:a][m]amix=inputs=2:duration=first:dropout_transition=2[aout]"
	} else {
		af = "[1:a]anull[aout]"
	}

	args = append(args,
		"-filter_complex", vf+";"+af,
		"-map", "[vout]", "-map", "[aout]",
		"-t", fmt.Sprintf("%.2f", durationSecs),
		"-r", "30",
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "128k",
		"-movflags", "+faststart",
		in.OutputPath,
	)
	return args
}

func (r *Renderer) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, r.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return secs, nil
}

// escapeDrawtext escapes the characters the drawtext filter treats as
// syntax inside a single-quoted text value.
func escapeDrawtext(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(s)
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
