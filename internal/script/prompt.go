package script

import (
	"fmt"
	"strings"

	"mindcast/internal/trends"
)

const systemPrompt = `You write short-form vertical video narrations for a mental health awareness account.
Tone: warm, grounded, non-clinical. Never give medical advice, name medication, or promise outcomes.
Always point viewers toward professional help for serious concerns.
Respond with a single JSON object and nothing else, using exactly these keys:
{"title": string, "hook": string, "body": string, "cta": string, "caption": string, "hashtags": [string]}
Constraints: hook under 30 words and attention-grabbing; body between 60 and 220 words of plain spoken language;
cta is one supportive sentence; caption under 2200 characters; 3 to 10 hashtags, each starting with '#'.`

// BuildPrompt renders the user prompt for a topic. Repair reasons from a
// failed validation round get appended so the second attempt can fix them.
func BuildPrompt(topic *trends.Topic, repairReasons []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's topic: %s\n", topic.Title)
	if topic.Summary != "" {
		fmt.Fprintf(&b, "Context from the source post:\n%s\n", topic.Summary)
	}
	if len(topic.Keywords) > 0 {
		fmt.Fprintf(&b, "Key themes: %s\n", strings.Join(topic.Keywords, ", "))
	}
	b.WriteString("Write today's narration JSON now.")

	if len(repairReasons) > 0 {
		b.WriteString("\n\nYour previous attempt was rejected for these reasons; fix every one of them:\n")
		for _, reason := range repairReasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}
	return b.String()
}
