package parser

import (
	"testing"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

const sampleResponse = `1. SUMMARY
A relentlessly curious engineer who thinks in public and treats every thread as a chance to teach.

2. PERSONALITY TRAITS
Curiosity 8/10 - asks many questions
- Optimism: 7/10 - frames setbacks as experiments
3. **Directness** 6/10 - says what they think

3. PRIMARY INTERESTS
1. Distributed systems
- Developer tooling
Urban cycling

4. COMMUNICATION STYLE
Formality: 35
Enthusiasm: 72
Technical Level: 80
Emoji Usage: 15
Verbosity: 45
Description: Short, punchy sentences with the occasional deep-dive thread.

5. WRITING PATTERNS
Capitalization: lowercase
Punctuation: ellipsis, em dash
Line Breaks: frequent
Opening Phrases: ok so, hot take
Closing Phrases: anyway, more soon

6. CONTEXTUAL VARIATIONS
Business: Polished but still informal.
Casual: Fragmented, jokey, lowercase.
Technical: Precise, link-heavy, assumes context.
Crisis: Calm, short declarative updates.

7. VOCABULARY
Common Terms: latency, throughput, shipping
Common Phrases: turns out, the fun part
Enthusiasm Markers: let's go, huge
Industry Terms: raft, gossip protocol

8. EMOTIONAL INTELLIGENCE
Leadership Style: leads by shipping
Challenge Response: counters with data
Analytical Tone: dry and precise
Supportive Patterns: boosts others' launches, answers DMs

9. TOPICS AND THEMES
Consensus algorithms
Developer experience

10. EMOTIONAL TONE
Upbeat with an undercurrent of impatience.

11. SOCIAL BEHAVIOR METRICS
Oversharing: 20
Reply Frequency: 85
Virality Seeking: 30
Humor Usage: 60
Controversy Tendency: 25
Emotional Volatility: 15
`

func TestParseFullResponse(t *testing.T) {
	p := Parse(sampleResponse)

	if p.Summary == profile.DefaultSummary {
		t.Error("Summary should have been parsed")
	}

	if len(p.Traits) != 3 {
		t.Fatalf("Expected 3 traits across drifting formats, got %d: %+v", len(p.Traits), p.Traits)
	}

	expectTrait := func(i int, name string, score float64) {
		t.Helper()
		if p.Traits[i].Name != name || p.Traits[i].Score != score {
			t.Errorf("Trait %d: expected %s %.0f, got %s %.0f", i, name, score, p.Traits[i].Name, p.Traits[i].Score)
		}
	}
	expectTrait(0, "Curiosity", 8)
	expectTrait(1, "Optimism", 7)
	expectTrait(2, "Directness", 6)

	if p.Traits[0].Explanation != "asks many questions" {
		t.Errorf("Trait explanation lost: %q", p.Traits[0].Explanation)
	}

	if len(p.Interests) != 3 || p.Interests[0] != "Distributed systems" {
		t.Errorf("Interests mis-parsed: %v", p.Interests)
	}

	if p.CommunicationStyle.Formality != 35 || p.CommunicationStyle.TechnicalLevel != 80 {
		t.Errorf("Style scalars mis-parsed: %+v", p.CommunicationStyle)
	}

	if p.CommunicationStyle.Description == profile.DefaultStyleDescription {
		t.Error("Style description should have been parsed")
	}

	if p.CommunicationStyle.Patterns.Capitalization != "lowercase" {
		t.Errorf("Capitalization mis-parsed: %q", p.CommunicationStyle.Patterns.Capitalization)
	}

	if len(p.CommunicationStyle.Patterns.OpeningPhrases) != 2 {
		t.Errorf("Opening phrases mis-parsed: %v", p.CommunicationStyle.Patterns.OpeningPhrases)
	}

	if p.CommunicationStyle.ContextualVariations.Crisis != "Calm, short declarative updates." {
		t.Errorf("Crisis variation mis-parsed: %q", p.CommunicationStyle.ContextualVariations.Crisis)
	}

	if len(p.Vocabulary.CommonTerms) != 3 || p.Vocabulary.CommonTerms[0].Term != "latency" {
		t.Errorf("Vocabulary mis-parsed: %+v", p.Vocabulary.CommonTerms)
	}

	if p.Vocabulary.CommonTerms[0].Frequency != 0 {
		t.Error("Model-derived terms must not carry frequencies")
	}

	if p.EmotionalIntelligence.LeadershipStyle != "leads by shipping" {
		t.Errorf("EQ mis-parsed: %+v", p.EmotionalIntelligence)
	}

	if len(p.TopicsAndThemes) != 2 {
		t.Errorf("Topics mis-parsed: %v", p.TopicsAndThemes)
	}

	if p.EmotionalTone != "Upbeat with an undercurrent of impatience." {
		t.Errorf("Tone mis-parsed: %q", p.EmotionalTone)
	}

	if p.SocialBehaviorMetrics.ReplyFrequency != 85 {
		t.Errorf("Social metrics mis-parsed: %+v", p.SocialBehaviorMetrics)
	}

	if p.SocialBehaviorMetrics.Missing() {
		t.Error("Parsed social metrics should not read as missing")
	}
}

func TestParseEmptyStringYieldsSafeDefaults(t *testing.T) {
	for _, input := range []string{"", "   \n\n  ", "no recognizable headers anywhere in this text"} {
		p := Parse(input)

		if p.Summary == "" {
			t.Error("Summary must never be empty")
		}
		if len(p.Interests) == 0 || p.Interests[0] != profile.DefaultInterest {
			t.Errorf("Expected sentinel interest, got %v", p.Interests)
		}
		if len(p.TopicsAndThemes) == 0 {
			t.Error("Topics must never be empty")
		}
		if p.EmotionalTone == "" {
			t.Error("Tone must never be empty")
		}
		if len(p.CommunicationStyle.Patterns.Punctuation) == 0 {
			t.Error("Punctuation must never be empty")
		}
	}
}

func TestParseDropsGarbageLines(t *testing.T) {
	text := `2. PERSONALITY TRAITS
Curiosity 8/10 - asks many questions
~~~~ complete garbage that matches nothing ~~~~
|||

3. PRIMARY INTERESTS
Distributed systems
`
	p := Parse(text)

	if len(p.Traits) != 1 {
		t.Errorf("Expected garbage lines to be dropped, got traits %+v", p.Traits)
	}

	if len(p.Interests) != 1 {
		t.Errorf("Expected 1 interest, got %v", p.Interests)
	}
}

func TestParseCategoricalScalars(t *testing.T) {
	text := `4. COMMUNICATION STYLE
Formality: low
Enthusiasm: high
Verbosity: medium
`
	p := Parse(text)

	if p.CommunicationStyle.Formality != 20 {
		t.Errorf("Expected low=20, got %.0f", p.CommunicationStyle.Formality)
	}
	if p.CommunicationStyle.Enthusiasm != 80 {
		t.Errorf("Expected high=80, got %.0f", p.CommunicationStyle.Enthusiasm)
	}
	if p.CommunicationStyle.Verbosity != 50 {
		t.Errorf("Expected medium=50, got %.0f", p.CommunicationStyle.Verbosity)
	}
}

func TestParseInlineHeaderContent(t *testing.T) {
	text := "Emotional Tone: Warm and direct.\n"
	p := Parse(text)

	if p.EmotionalTone != "Warm and direct." {
		t.Errorf("Inline header content lost: %q", p.EmotionalTone)
	}
}

func TestParseJSONFastPath(t *testing.T) {
	text := "```json\n" + `{
  "summary": "A curious builder.",
  "traits": [{"name": "Curiosity", "score": 8, "explanation": "asks questions"}],
  "interests": ["Distributed systems"],
  "communicationStyle": {"formality": 30, "description": "short and punchy"},
  "emotional_tone": "upbeat",
  "social_behavior_metrics": {"reply_frequency": 80, "oversharing": 10}
}` + "\n```"

	p := Parse(text)

	if p.Summary != "A curious builder." {
		t.Errorf("JSON summary lost: %q", p.Summary)
	}

	if len(p.Traits) != 1 || p.Traits[0].Score != 8 {
		t.Errorf("JSON traits mis-parsed: %+v", p.Traits)
	}

	if p.CommunicationStyle.Formality != 30 {
		t.Errorf("camelCase style keys should be accepted: %+v", p.CommunicationStyle)
	}

	if p.SocialBehaviorMetrics.ReplyFrequency != 80 {
		t.Errorf("JSON social metrics mis-parsed: %+v", p.SocialBehaviorMetrics)
	}

	if p.EmotionalTone != "upbeat" {
		t.Errorf("JSON tone mis-parsed: %q", p.EmotionalTone)
	}
}

func TestParseTraitScoreOutOfRangeDropped(t *testing.T) {
	text := `2. PERSONALITY TRAITS
Curiosity 15/10 - impossible score
Optimism 7/10 - fine
`
	p := Parse(text)

	if len(p.Traits) != 1 || p.Traits[0].Name != "Optimism" {
		t.Errorf("Out-of-range trait should be dropped: %+v", p.Traits)
	}
}
