package trends

import (
	"regexp"
	"strings"
	"time"

	"mindcast/pkg/domain"
)

// Candidate is a raw topic candidate as returned by a source, before
// ranking and dedup.
type Candidate struct {
	Title      string
	Summary    string
	Source     string
	SourceURL  string
	Engagement int
}

// Topic is a selected (or historical) daily topic. Keep it transport-agnostic
// so stores and the admin API share one shape.
type Topic struct {
	ID          domain.TopicID
	Title       string
	Summary     string
	Source      string
	SourceURL   string
	Score       float64
	Keywords    []string
	SelectedFor string // YYYY-MM-DD the topic was chosen for
	FetchedAt   time.Time
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

// stopwords excluded from keyword extraction; covers the common filler in
// reddit-style titles.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"how": true, "i": true, "in": true, "is": true, "it": true, "my": true,
	"of": true, "on": true, "or": true, "so": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "what": true,
	"when": true, "why": true, "with": true, "you": true, "your": true,
}

// Keywords extracts lowercase keyword tokens from a title for similarity
// comparison and cooldown keys.
func Keywords(title string) []string {
	clean := nonWord.ReplaceAllString(strings.ToLower(title), " ")
	var out []string
	seen := map[string]bool{}
	for _, tok := range strings.Fields(clean) {
		if len(tok) < 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// CooldownKey is a stable key for a topic title, used for the Redis cooldown
// and history similarity checks.
func CooldownKey(title string) string {
	kw := Keywords(title)
	if len(kw) == 0 {
		return strings.ToLower(strings.TrimSpace(title))
	}
	return strings.Join(kw, "-")
}
