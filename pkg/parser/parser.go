// Package parser converts unstructured model text into the personality
// profile schema. It never fails: unparsable lines are dropped and every
// structural field gets a safe default, so output is always schema-valid even
// when near-empty.
package parser

import (
	"strings"

	"github.com/soulforge-ai/soulforge/pkg/llm"
	"github.com/soulforge-ai/soulforge/pkg/profile"
)

type section int

const (
	secNone section = iota
	secSummary
	secTraits
	secInterests
	secStyle
	secPatterns
	secVariations
	secVocabulary
	secEmotionalIQ
	secTopics
	secTone
	secSocial
)

// headerKeywords dispatch a header line to its section. Order matters:
// longer, more specific phrases are checked before their substrings.
var headerKeywords = []struct {
	keyword string
	sec     section
}{
	{"personality trait", secTraits},
	{"trait", secTraits},
	{"primary interest", secInterests},
	{"interest", secInterests},
	{"communication style", secStyle},
	{"writing pattern", secPatterns},
	{"contextual variation", secVariations},
	{"vocabulary", secVocabulary},
	{"emotional intelligence", secEmotionalIQ},
	{"social behavior", secSocial},
	{"emotional tone", secTone},
	{"topic", secTopics},
	{"theme", secTopics},
	{"summary", secSummary},
}

// Parse converts model text into a best-effort profile. The text is walked
// section by section across blank-line boundaries; within each section an
// ordered list of extractors handles formatting drift. A JSON response (some
// models ignore format instructions and emit JSON) takes the gjson fast path
// instead.
func Parse(text string) (p profile.Profile) {
	cleaned := llm.StripMarkdownCodeFences(text)

	if jsonProfile, ok := parseJSON(cleaned); ok {
		p = jsonProfile
		p.ApplyDefaults()
		return p
	}

	var (
		current      = secNone
		summaryLines []string
		toneLines    []string
	)

	for _, block := range strings.Split(cleaned, "\n\n") {
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if sec, rest, isHeader := matchHeader(line); isHeader {
				current = sec
				if rest == "" {
					continue
				}
				line = rest
			}

			switch current {
			case secSummary:
				summaryLines = append(summaryLines, line)
			case secTraits:
				if t, ok := extractTrait(line); ok {
					p.Traits = append(p.Traits, t)
				}
			case secInterests:
				if item, ok := extractListItem(line); ok {
					p.Interests = append(p.Interests, item)
				}
			case secStyle:
				parseStyleLine(line, &p.CommunicationStyle)
			case secPatterns:
				parsePatternLine(line, &p.CommunicationStyle.Patterns)
			case secVariations:
				parseVariationLine(line, &p.CommunicationStyle.ContextualVariations)
			case secVocabulary:
				parseVocabularyLine(line, &p.Vocabulary)
			case secEmotionalIQ:
				parseEmotionalIQLine(line, &p.EmotionalIntelligence)
			case secTopics:
				if item, ok := extractListItem(line); ok {
					p.TopicsAndThemes = append(p.TopicsAndThemes, item)
				}
			case secTone:
				toneLines = append(toneLines, line)
			case secSocial:
				parseSocialLine(line, &p.SocialBehaviorMetrics)
			}
		}
	}

	p.Summary = strings.Join(summaryLines, " ")
	p.EmotionalTone = strings.Join(toneLines, " ")

	p.ApplyDefaults()
	return p
}

// matchHeader reports whether a line is a section header. Inline content
// after a header colon ("Emotional Tone: warm and direct") is returned as
// rest so it is not lost.
func matchHeader(line string) (sec section, rest string, isHeader bool) {
	normalized := strings.ToLower(line)
	normalized = strings.TrimLeft(normalized, "#*0123456789.) \t")
	normalized = strings.TrimRight(normalized, "*# \t")

	for _, h := range headerKeywords {
		if !strings.HasPrefix(normalized, h.keyword) {
			continue
		}

		after := strings.TrimPrefix(normalized, h.keyword)
		after = strings.TrimPrefix(after, "s") // plural form
		after = strings.TrimSpace(after)

		switch {
		case after == "", after == "and themes", after == "metrics":
			sec = h.sec
			isHeader = true
			return sec, rest, isHeader
		case strings.HasPrefix(after, ":"):
			sec = h.sec
			// Inline content after the colon keeps its original casing.
			if idx := strings.Index(line, ":"); idx >= 0 {
				rest = strings.TrimSpace(line[idx+1:])
			}
			isHeader = true
			return sec, rest, isHeader
		}
	}

	return sec, rest, isHeader
}

func parseStyleLine(line string, style *profile.CommunicationStyle) {
	if key, value, ok := extractScalar(line); ok {
		switch key {
		case "formality":
			style.Formality = value
			return
		case "enthusiasm":
			style.Enthusiasm = value
			return
		case "technical level", "technicality":
			style.TechnicalLevel = value
			return
		case "emoji usage", "emoji":
			style.EmojiUsage = value
			return
		case "verbosity":
			style.Verbosity = value
			return
		}
	}

	if key, value, ok := extractKeyed(line); ok && key == "description" {
		style.Description = value
	}
}

func parsePatternLine(line string, patterns *profile.WritingPatterns) {
	key, value, ok := extractKeyed(line)
	if !ok {
		return
	}

	switch key {
	case "capitalization":
		patterns.Capitalization = strings.ToLower(value)
	case "punctuation":
		patterns.Punctuation = splitCSV(value)
	case "line breaks":
		patterns.LineBreaks = strings.ToLower(value)
	case "opening phrases":
		patterns.OpeningPhrases = splitCSV(value)
	case "framing phrases":
		patterns.FramingPhrases = splitCSV(value)
	case "closing phrases":
		patterns.ClosingPhrases = splitCSV(value)
	}
}

func parseVariationLine(line string, variations *profile.ContextualVariations) {
	key, value, ok := extractKeyed(line)
	if !ok {
		return
	}

	switch key {
	case "business":
		variations.Business = value
	case "casual":
		variations.Casual = value
	case "technical":
		variations.Technical = value
	case "crisis":
		variations.Crisis = value
	}
}

func parseVocabularyLine(line string, vocab *profile.Vocabulary) {
	key, value, ok := extractKeyed(line)
	if !ok {
		return
	}

	switch key {
	case "common terms":
		vocab.CommonTerms = asTerms(splitCSV(value))
	case "common phrases":
		vocab.CommonPhrases = asTerms(splitCSV(value))
	case "enthusiasm markers":
		vocab.EnthusiasmMarkers = splitCSV(value)
	case "industry terms":
		vocab.IndustryTerms = splitCSV(value)
	}
}

func parseEmotionalIQLine(line string, eq *profile.EmotionalIntelligence) {
	key, value, ok := extractKeyed(line)
	if !ok {
		return
	}

	switch key {
	case "leadership style":
		eq.LeadershipStyle = value
	case "challenge response":
		eq.ChallengeResponse = value
	case "analytical tone":
		eq.AnalyticalTone = value
	case "supportive patterns":
		eq.SupportivePatterns = splitCSV(value)
	}
}

func parseSocialLine(line string, metrics *profile.SocialBehaviorMetrics) {
	key, value, ok := extractScalar(line)
	if !ok {
		return
	}

	switch key {
	case "oversharing":
		metrics.Oversharing = value
	case "reply frequency":
		metrics.ReplyFrequency = value
	case "virality seeking":
		metrics.ViralitySeeking = value
	case "humor usage", "humor":
		metrics.HumorUsage = value
	case "controversy tendency", "controversy":
		metrics.ControversyTendency = value
	case "emotional volatility":
		metrics.EmotionalVolatility = value
	}
}

// asTerms wraps model-derived strings as terms without frequency data;
// frequencies are only attached to corpus-derived vocabulary.
func asTerms(items []string) (terms []profile.Term) {
	for _, item := range items {
		terms = append(terms, profile.Term{Term: item})
	}
	return terms
}
