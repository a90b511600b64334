package script

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// bannedPhrases are claims the account must never make. Matched
// case-insensitively against the narration and caption.
var bannedPhrases = []string{
	"cure", "cures", "guaranteed", "diagnose", "diagnosis",
	"prescription", "medication", "miracle", "clinically proven",
}

const (
	maxHookWords  = 30
	minBodyWords  = 60
	maxBodyWords  = 220
	maxCaptionLen = 2200 // Instagram caption limit
	minHashtags   = 3
	maxHashtags   = 10
)

// ValidationError lists every rule the script broke so the repair prompt
// can name them all at once.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid script: " + strings.Join(e.Reasons, "; ")
}

// Validate checks a generated script against the content rules. Returns a
// *ValidationError naming every violation, or nil.
func Validate(s *Script) error {
	var reasons []string

	if strings.TrimSpace(s.Title) == "" {
		reasons = append(reasons, "title is empty")
	}
	if n := wordCount(s.Hook); n == 0 {
		reasons = append(reasons, "hook is empty")
	} else if n > maxHookWords {
		reasons = append(reasons, fmt.Sprintf("hook is %d words, limit is %d", n, maxHookWords))
	}
	if n := wordCount(s.Body); n < minBodyWords || n > maxBodyWords {
		reasons = append(reasons, fmt.Sprintf("body is %d words, must be between %d and %d", n, minBodyWords, maxBodyWords))
	}
	if strings.TrimSpace(s.CTA) == "" {
		reasons = append(reasons, "cta is empty")
	}
	// Instagram counts characters, not bytes.
	if n := utf8.RuneCountInString(s.Caption); n > maxCaptionLen {
		reasons = append(reasons, fmt.Sprintf("caption is %d characters, limit is %d", n, maxCaptionLen))
	}
	if n := len(s.Hashtags); n < minHashtags || n > maxHashtags {
		reasons = append(reasons, fmt.Sprintf("%d hashtags, must be between %d and %d", n, minHashtags, maxHashtags))
	}
	for _, tag := range s.Hashtags {
		if !strings.HasPrefix(tag, "#") || len(tag) < 2 || strings.ContainsAny(tag[1:], " #") {
			reasons = append(reasons, fmt.Sprintf("malformed hashtag %q", tag))
		}
	}

	lower := strings.ToLower(s.Narration() + " " + s.Caption)
	for _, phrase := range bannedPhrases {
		if containsWord(lower, phrase) {
			reasons = append(reasons, fmt.Sprintf("banned phrase %q", phrase))
		}
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// containsWord matches whole words only, so "cure" doesn't flag "secure".
func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
