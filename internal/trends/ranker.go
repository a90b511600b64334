package trends

import (
	"math"
	"sort"
)

// boostTerms nudge candidates that are squarely about mental health above
// tangential ones. Weights are additive on top of the engagement score.
var boostTerms = map[string]float64{
	"anxiety": 1.5, "depression": 1.5, "burnout": 1.3, "therapy": 1.2,
	"mindfulness": 1.2, "stress": 1.0, "sleep": 0.8, "loneliness": 1.0,
	"grief": 1.0, "meditation": 0.8, "boundaries": 0.8, "selfcare": 1.0,
}

// Rank scores candidates and returns them best-first. Recent topics drag
// down near-duplicates via token overlap so consecutive days don't read the
// same.
func Rank(candidates []Candidate, recent []Topic) []Topic {
	recentKeywords := make([]map[string]bool, 0, len(recent))
	for _, topic := range recent {
		set := map[string]bool{}
		for _, kw := range topic.Keywords {
			set[kw] = true
		}
		recentKeywords = append(recentKeywords, set)
	}

	topics := make([]Topic, 0, len(candidates))
	for _, c := range candidates {
		keywords := Keywords(c.Title)
		score := score(c, keywords, recentKeywords)
		topics = append(topics, Topic{
			Title:     c.Title,
			Summary:   c.Summary,
			Source:    c.Source,
			SourceURL: c.SourceURL,
			Score:     score,
			Keywords:  keywords,
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Score > topics[j].Score
	})
	return topics
}

func score(c Candidate, keywords []string, recent []map[string]bool) float64 {
	// log scale keeps one viral post from drowning every other signal
	s := math.Log10(float64(1 + max(c.Engagement, 0)))

	for _, kw := range keywords {
		if boost, ok := boostTerms[kw]; ok {
			s += boost
		}
	}

	s -= 4 * maxOverlap(keywords, recent)
	return s
}

// maxOverlap returns the highest Jaccard similarity between the candidate's
// keywords and any recent topic's keywords.
func maxOverlap(keywords []string, recent []map[string]bool) float64 {
	best := 0.0
	for _, set := range recent {
		if len(keywords) == 0 || len(set) == 0 {
			continue
		}
		shared := 0
		for _, kw := range keywords {
			if set[kw] {
				shared++
			}
		}
		union := len(keywords) + len(set) - shared
		if union == 0 {
			continue
		}
		if j := float64(shared) / float64(union); j > best {
			best = j
		}
	}
	return best
}

// Similar reports whether a candidate is close enough to a recent topic to
// count as already covered.
func Similar(keywords []string, recent []Topic) bool {
	sets := make([]map[string]bool, 0, len(recent))
	for _, topic := range recent {
		set := map[string]bool{}
		for _, kw := range topic.Keywords {
			set[kw] = true
		}
		sets = append(sets, set)
	}
	return maxOverlap(keywords, sets) >= 0.5
}
