package video

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRenderArgs(t *testing.T) {
	base := RenderInput{
		NarrationPath:  "/work/narration.mp3",
		BackgroundPath: "/assets/backgrounds/calm.mp4",
		OutputPath:     "/work/out.mp4",
	}

	t.Run("narration only", func(t *testing.T) {
		args := buildRenderArgs(base, 42.5, 1080, 1920)
		joined := strings.Join(args, " ")

		assert.Contains(t, joined, "-stream_loop -1 -i /assets/backgrounds/calm.mp4")
		assert.Contains(t, joined, "-i /work/narration.mp3")
		assert.Contains(t, joined, "scale=1080:1920")
		assert.Contains(t, joined, "crop=1080:1920")
		assert.Contains(t, joined, "[1:a]anull[aout]")
		assert.Contains(t, joined, "-t 42.50")
		assert.NotContains(t, joined, "amix")
		assert.NotContains(t, joined, "drawtext")
		assert.Equal(t, "/work/out.mp4", args[len(args)-1])
	})

	t.Run("with music bed", func(t *testing.T) {
		in := base
		in.MusicPath = "/assets/music/piano.mp3"
		joined := strings.Join(buildRenderArgs(in, 30, 1080, 1920), " ")

		assert.Contains(t, joined, "-i /assets/music/piano.mp3")
		assert.Contains(t, joined, "amix=inputs=2:duration=first")
		assert.Contains(t, joined, "volume=0.12")
	})

	t.Run("title overlay needs a font", func(t *testing.T) {
		in := base
		in.Title = "Burnout warning signs"
		joined := strings.Join(buildRenderArgs(in, 30, 1080, 1920), " ")
		assert.NotContains(t, joined, "drawtext")

		in.FontPath = "/assets/fonts/Inter.ttf"
		joined = strings.Join(buildRenderArgs(in, 30, 1080, 1920), " ")
		assert.Contains(t, joined, "drawtext=fontfile=/assets/fonts/Inter.ttf")
		assert.Contains(t, joined, "text='Burnout warning signs'")
	})
}

func TestEscapeDrawtext(t *testing.T) {
	assert.Equal(t, `it\'s 50\% ok`, escapeDrawtext(`it's 50% ok`))
	assert.Equal(t, `a\:b`, escapeDrawtext("a:b"))
	assert.Equal(t, `back\\slash`, escapeDrawtext(`back\slash`))
}

func TestTailLines(t *testing.T) {
	assert.Equal(t, "c\nd", tailLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a\nb", tailLines("a\nb", 5))
}
