package video

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mindcast/pkg/platform/sentinel"
)

// Assets holds the background loop, music bed, and title font chosen for
// one render. MusicPath and FontPath are empty when the assets directory
// carries none.
type Assets struct {
	BackgroundPath string
	MusicPath      string
	FontPath       string
}

var (
	videoExts = map[string]bool{".mp4": true, ".mov": true, ".webm": true}
	audioExts = map[string]bool{".mp3": true, ".m4a": true, ".wav": true, ".ogg": true}
	fontExts  = map[string]bool{".ttf": true, ".otf": true}
)

// PickAssets selects a background video and music track from assetsDir
// (subdirectories backgrounds/ and music/). Selection hashes the date so a
// resumed run renders with the same assets as the original attempt.
func PickAssets(assetsDir string, date time.Time) (*Assets, error) {
	backgrounds, err := listAssets(filepath.Join(assetsDir, "backgrounds"), videoExts)
	if err != nil {
		return nil, fmt.Errorf("list backgrounds: %w", err)
	}
	if len(backgrounds) == 0 {
		return nil, fmt.Errorf("no background videos in %s: %w", assetsDir, sentinel.ErrNotFound)
	}

	music, err := listAssets(filepath.Join(assetsDir, "music"), audioExts)
	if err != nil {
		return nil, fmt.Errorf("list music: %w", err)
	}

	fonts, err := listAssets(filepath.Join(assetsDir, "fonts"), fontExts)
	if err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}

	seed := dateSeed(date)
	picked := &Assets{BackgroundPath: backgrounds[seed%uint32(len(backgrounds))]}
	if len(music) > 0 {
		picked.MusicPath = music[seed%uint32(len(music))]
	}
	if len(fonts) > 0 {
		picked.FontPath = fonts[0]
	}
	return picked, nil
}

func listAssets(dir string, exts map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func dateSeed(date time.Time) uint32 {
	h := fnv.New32a()
	h.Write([]byte(date.Format("2006-01-02")))
	return h.Sum32()
}
