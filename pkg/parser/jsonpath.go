package parser

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// JSON fast path: some models answer the numbered-section prompt with a JSON
// document anyway. Rather than regex-parse serialized JSON, read it with
// gjson. Both snake_case and camelCase keys are accepted.

func parseJSON(text string) (p profile.Profile, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return p, ok
	}

	doc := gjson.Parse(trimmed)

	p.Summary = first(doc, "summary").String()

	for _, t := range first(doc, "traits", "personality_traits", "personalityTraits").Array() {
		trait := profile.Trait{
			Name:        t.Get("name").String(),
			Score:       t.Get("score").Float(),
			Explanation: t.Get("explanation").String(),
		}
		if trait.Name == "" {
			continue
		}
		trait.Score = profile.Clamp(trait.Score, 0, 10)
		p.Traits = append(p.Traits, trait)
	}

	p.Interests = stringList(first(doc, "interests", "primary_interests", "primaryInterests"))
	p.TopicsAndThemes = stringList(first(doc, "topics_and_themes", "topicsAndThemes", "topics"))
	p.EmotionalTone = first(doc, "emotional_tone", "emotionalTone").String()

	style := first(doc, "communication_style", "communicationStyle")
	if style.Exists() {
		p.CommunicationStyle.Formality = style.Get("formality").Float()
		p.CommunicationStyle.Enthusiasm = style.Get("enthusiasm").Float()
		p.CommunicationStyle.TechnicalLevel = first(style, "technical_level", "technicalLevel").Float()
		p.CommunicationStyle.EmojiUsage = first(style, "emoji_usage", "emojiUsage").Float()
		p.CommunicationStyle.Verbosity = style.Get("verbosity").Float()
		p.CommunicationStyle.Description = style.Get("description").String()
	}

	vocab := first(doc, "vocabulary")
	if vocab.Exists() {
		p.Vocabulary.CommonTerms = termList(first(vocab, "common_terms", "commonTerms"))
		p.Vocabulary.CommonPhrases = termList(first(vocab, "common_phrases", "commonPhrases"))
		p.Vocabulary.EnthusiasmMarkers = stringList(first(vocab, "enthusiasm_markers", "enthusiasmMarkers"))
		p.Vocabulary.IndustryTerms = stringList(first(vocab, "industry_terms", "industryTerms"))
	}

	eq := first(doc, "emotional_intelligence", "emotionalIntelligence")
	if eq.Exists() {
		p.EmotionalIntelligence.LeadershipStyle = first(eq, "leadership_style", "leadershipStyle").String()
		p.EmotionalIntelligence.ChallengeResponse = first(eq, "challenge_response", "challengeResponse").String()
		p.EmotionalIntelligence.AnalyticalTone = first(eq, "analytical_tone", "analyticalTone").String()
		p.EmotionalIntelligence.SupportivePatterns = stringList(first(eq, "supportive_patterns", "supportivePatterns"))
	}

	social := first(doc, "social_behavior_metrics", "socialBehaviorMetrics")
	if social.Exists() {
		p.SocialBehaviorMetrics.Oversharing = social.Get("oversharing").Float()
		p.SocialBehaviorMetrics.ReplyFrequency = first(social, "reply_frequency", "replyFrequency").Float()
		p.SocialBehaviorMetrics.ViralitySeeking = first(social, "virality_seeking", "viralitySeeking").Float()
		p.SocialBehaviorMetrics.HumorUsage = first(social, "humor_usage", "humorUsage").Float()
		p.SocialBehaviorMetrics.ControversyTendency = first(social, "controversy_tendency", "controversyTendency").Float()
		p.SocialBehaviorMetrics.EmotionalVolatility = first(social, "emotional_volatility", "emotionalVolatility").Float()
	}

	// Only claim the fast path when the document actually looked like a
	// profile; otherwise fall through to text parsing.
	ok = p.Summary != "" || len(p.Traits) > 0 || len(p.Interests) > 0
	return p, ok
}

// first returns the first existing path.
func first(doc gjson.Result, paths ...string) (result gjson.Result) {
	for _, path := range paths {
		result = doc.Get(path)
		if result.Exists() {
			return result
		}
	}
	return result
}

func stringList(result gjson.Result) (items []string) {
	for _, r := range result.Array() {
		if s := strings.TrimSpace(r.String()); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func termList(result gjson.Result) (terms []profile.Term) {
	for _, r := range result.Array() {
		if r.IsObject() {
			term := profile.Term{
				Term:       r.Get("term").String(),
				Frequency:  int(r.Get("frequency").Int()),
				Percentage: r.Get("percentage").Float(),
			}
			if term.Term != "" {
				terms = append(terms, term)
			}
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			terms = append(terms, profile.Term{Term: s})
		}
	}
	return terms
}
