package script

import (
	"strings"
	"time"

	"mindcast/pkg/domain"
)

// Script is the generated narration package for one topic: what gets read
// aloud (Hook, Body, CTA) plus the caption and hashtags for the post.
type Script struct {
	TopicID          domain.TopicID
	Title            string
	Hook             string
	Body             string
	CTA              string
	Caption          string
	Hashtags         []string
	WordCount        int
	EstimatedSeconds float64
	Model            string
	GeneratedAt      time.Time
}

// narrationWPS approximates a calm TTS reading pace.
const narrationWPS = 2.6

// Narration returns the text handed to TTS, in speaking order.
func (s *Script) Narration() string {
	parts := []string{s.Hook, s.Body, s.CTA}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// finalize fills the derived fields after generation.
func (s *Script) finalize(model string, now time.Time) {
	s.WordCount = len(strings.Fields(s.Narration()))
	s.EstimatedSeconds = float64(s.WordCount) / narrationWPS
	s.Model = model
	s.GeneratedAt = now
}
