package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	t.Run("drops stopwords and short tokens", func(t *testing.T) {
		got := Keywords("How to deal with anxiety at work")
		assert.Equal(t, []string{"deal", "anxiety", "work"}, got)
	})

	t.Run("dedupes repeated tokens", func(t *testing.T) {
		got := Keywords("Sleep, sleep, and more sleep")
		assert.Equal(t, []string{"sleep", "more"}, got)
	})

	t.Run("strips punctuation", func(t *testing.T) {
		got := Keywords("Burnout: what it is (and isn't)")
		assert.Contains(t, got, "burnout")
		assert.NotContains(t, got, "burnout:")
	})
}

func TestRank_PrefersTopicalHighEngagement(t *testing.T) {
	candidates := []Candidate{
		{Title: "My cat did something funny", Engagement: 90000},
		{Title: "Dealing with burnout and anxiety at work", Engagement: 800},
		{Title: "Random gardening tips", Engagement: 750},
	}

	ranked := Rank(candidates, nil)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Dealing with burnout and anxiety at work", ranked[0].Title)
}

func TestRank_PenalizesRecentlyCoveredTopics(t *testing.T) {
	recent := []Topic{
		{Title: "Managing workplace burnout", Keywords: Keywords("Managing workplace burnout")},
	}
	candidates := []Candidate{
		{Title: "Managing workplace burnout again", Engagement: 5000},
		{Title: "Grief and how to sit with it", Engagement: 5000},
	}

	ranked := Rank(candidates, recent)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Grief and how to sit with it", ranked[0].Title)
}

func TestSimilar(t *testing.T) {
	recent := []Topic{
		{Title: "Sleep hygiene basics", Keywords: Keywords("Sleep hygiene basics")},
	}

	assert.True(t, Similar(Keywords("Sleep hygiene basics for everyone"), recent))
	assert.False(t, Similar(Keywords("Loneliness in remote work"), recent))
	assert.False(t, Similar(nil, recent))
}

func TestCooldownKey_Stable(t *testing.T) {
	a := CooldownKey("Dealing with Anxiety at Work!")
	b := CooldownKey("dealing with anxiety at work")
	assert.Equal(t, a, b)
	assert.NotEmpty(t, CooldownKey("!!!"))
}
