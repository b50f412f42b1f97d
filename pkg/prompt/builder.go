// Package prompt renders the model-facing prompts. Builders are pure
// functions of their inputs: retries vary output only through the explicit
// style-variation parameter, never through hidden randomness.
package prompt

import (
	"fmt"
	"strings"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// ProfileInfo identifies the account under analysis.
type ProfileInfo struct {
	Handle      string
	DisplayName string
	Bio         string
}

// AggregationRequest carries everything the profile-aggregation prompt needs.
type AggregationRequest struct {
	Info      ProfileInfo
	BatchText string
	// SoFar is the merged state of earlier batches; nil for the first batch.
	SoFar *profile.Profile
	// Focus lists field groups a retry should emphasize, e.g. after the
	// validation controller found them missing.
	Focus []string
}

// AggregationSystem is the system prompt for profile synthesis calls.
const AggregationSystem = "You are a personality analyst. You study a person's social posts and describe " +
	"their personality, interests, and communication style precisely and without flattery. " +
	"Follow the requested output format exactly."

// BuildAggregation renders the profile-aggregation prompt for one corpus
// batch.
func BuildAggregation(req AggregationRequest) (prompt string) {
	var sb strings.Builder

	name := req.Info.DisplayName
	if name == "" {
		name = req.Info.Handle
	}

	sb.WriteString(fmt.Sprintf("Analyze the personality of %s based on these posts.\n", name))
	if req.Info.Bio != "" {
		sb.WriteString(fmt.Sprintf("Their bio: %s\n", req.Info.Bio))
	}
	sb.WriteString("\nPOSTS:\n")
	sb.WriteString(req.BatchText)
	sb.WriteString("\n\n")

	if req.SoFar != nil && req.SoFar.Summary != profile.DefaultSummary {
		sb.WriteString("ANALYSIS SO FAR (refine and extend, do not contradict):\n")
		sb.WriteString(summarizeSoFar(req.SoFar))
		sb.WriteString("\n\n")
	}

	sb.WriteString(`Respond in exactly these numbered sections:

1. SUMMARY
A 2-3 sentence personality summary.

2. PERSONALITY TRAITS
One trait per line as: Name Score/10 - explanation
List 4-6 traits.

3. PRIMARY INTERESTS
One interest per line, most prominent first.

4. COMMUNICATION STYLE
One metric per line, each 0-100:
Formality: N
Enthusiasm: N
Technical Level: N
Emoji Usage: N
Verbosity: N
Then a line: Description: one-sentence style description

5. WRITING PATTERNS
Capitalization: standard|lowercase|expressive
Punctuation: list the characteristic marks
Line Breaks: minimal|moderate|frequent
Opening Phrases: comma-separated list
Closing Phrases: comma-separated list
Framing Phrases: comma-separated list of phrases they use to frame an argument

6. CONTEXTUAL VARIATIONS
Business: one sentence
Casual: one sentence
Technical: one sentence
Crisis: one sentence

7. VOCABULARY
Common Terms: comma-separated list
Common Phrases: comma-separated list
Enthusiasm Markers: comma-separated list
Industry Terms: comma-separated list

8. EMOTIONAL INTELLIGENCE
Leadership Style: one phrase
Challenge Response: one phrase
Analytical Tone: one phrase
Supportive Patterns: comma-separated list

9. TOPICS AND THEMES
One topic per line.

10. EMOTIONAL TONE
One sentence describing the overall emotional tone.

11. SOCIAL BEHAVIOR METRICS
One metric per line, each 0-100:
Oversharing: N
Reply Frequency: N
Virality Seeking: N
Humor Usage: N
Controversy Tendency: N
Emotional Volatility: N
`)

	if len(req.Focus) > 0 {
		sb.WriteString("\nIMPORTANT: your previous answer was missing or too generic in these sections; give them concrete, specific content this time: ")
		sb.WriteString(strings.Join(req.Focus, ", "))
		sb.WriteString("\n")
	}

	prompt = sb.String()
	return prompt
}

// summarizeSoFar renders the running aggregate compactly for inclusion in
// later batch prompts.
func summarizeSoFar(p *profile.Profile) (summary string) {
	var sb strings.Builder

	sb.WriteString("Summary: " + p.Summary + "\n")

	if len(p.Traits) > 0 {
		names := make([]string, 0, len(p.Traits))
		for _, t := range p.Traits {
			names = append(names, fmt.Sprintf("%s %.0f/10", t.Name, t.Score))
		}
		sb.WriteString("Traits: " + strings.Join(names, ", ") + "\n")
	}

	if len(p.Interests) > 0 && p.Interests[0] != profile.DefaultInterest {
		sb.WriteString("Interests: " + strings.Join(p.Interests, ", ") + "\n")
	}

	if p.EmotionalTone != profile.DefaultEmotionalTone {
		sb.WriteString("Emotional tone: " + p.EmotionalTone + "\n")
	}

	summary = sb.String()
	return summary
}
