package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

// RedditSource pulls hot submissions from the public listing endpoint of one
// or more subreddits. No OAuth: the JSON listing endpoints are public but
// require a descriptive User-Agent or reddit throttles aggressively.
type RedditSource struct {
	baseURL    string
	subreddits []string
	userAgent  string
	minScore   int
	client     *http.Client
}

// NewRedditSource constructs a source over the given subreddits.
func NewRedditSource(baseURL string, subreddits []string, userAgent string, minScore int) *RedditSource {
	return &RedditSource{
		baseURL:    baseURL,
		subreddits: subreddits,
		userAgent:  userAgent,
		minScore:   minScore,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *RedditSource) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string  `json:"title"`
				Selftext  string  `json:"selftext"`
				Score     int     `json:"score"`
				Permalink string  `json:"permalink"`
				Stickied  bool    `json:"stickied"`
				Over18    bool    `json:"over_18"`
				CreatedAt float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch returns candidates from all configured subreddits. A failing
// subreddit fails the whole source; the service treats per-source failures
// as non-fatal as long as another source succeeds.
func (s *RedditSource) Fetch(ctx context.Context) ([]Candidate, error) {
	var out []Candidate
	for _, sub := range s.subreddits {
		listing, err := s.fetchSubreddit(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("subreddit %s: %w", sub, err)
		}
		out = append(out, listing...)
	}
	return out, nil
}

func (s *RedditSource) fetchSubreddit(ctx context.Context, subreddit string) ([]Candidate, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=25", s.baseURL, subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("listing returned %d: %s", resp.StatusCode, string(body))
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	var out []Candidate
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || post.Over18 || post.Score < s.minScore {
			continue
		}
		out = append(out, Candidate{
			Title:      post.Title,
			Summary:    truncate(post.Selftext, 500),
			Source:     s.Name(),
			SourceURL:  s.baseURL + post.Permalink,
			Engagement: post.Score,
		})
	}
	return out, nil
}

// truncate cuts s to max runes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
