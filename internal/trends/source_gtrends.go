package trends

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// topicalTerms gates the Google Trends feed, which covers all of search:
// only items touching these terms become candidates.
var topicalTerms = []string{
	"mental health", "anxiety", "depression", "therapy", "mindfulness",
	"burnout", "stress", "self care", "self-care", "sleep", "loneliness",
	"wellbeing", "well-being", "meditation", "grief",
}

// GoogleTrendsSource reads the public daily trending-searches RSS feed and
// keeps only mental-health adjacent items.
type GoogleTrendsSource struct {
	baseURL string
	geo     string
	client  *http.Client
}

func NewGoogleTrendsSource(baseURL, geo string) *GoogleTrendsSource {
	if geo == "" {
		geo = "US"
	}
	return &GoogleTrendsSource{
		baseURL: baseURL,
		geo:     geo,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *GoogleTrendsSource) Name() string { return "google-trends" }

type trendsFeed struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			Traffic string `xml:"approx_traffic"`
			News    []struct {
				Title   string `xml:"news_item_title"`
				Snippet string `xml:"news_item_snippet"`
			} `xml:"news_item"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (s *GoogleTrendsSource) Fetch(ctx context.Context) ([]Candidate, error) {
	url := fmt.Sprintf("%s/trending/rss?geo=%s", s.baseURL, s.geo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned %d: %s", resp.StatusCode, string(body))
	}

	var feed trendsFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	var out []Candidate
	for _, item := range feed.Channel.Items {
		if !topical(item.Title) {
			continue
		}
		summary := ""
		if len(item.News) > 0 {
			summary = item.News[0].Snippet
		}
		out = append(out, Candidate{
			Title:      item.Title,
			Summary:    summary,
			Source:     s.Name(),
			SourceURL:  item.Link,
			Engagement: parseTraffic(item.Traffic),
		})
	}
	return out, nil
}

func topical(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range topicalTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// parseTraffic converts feed values like "200,000+" or "50K+" to a number.
// Unparseable values rank as zero engagement rather than failing the fetch.
func parseTraffic(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	s = strings.ReplaceAll(s, ",", "")
	multiplier := 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n * multiplier
}
