package synthesis

import (
	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// FieldGroup identifies a validated slice of the profile. A group failing
// validation triggers a targeted re-invocation focused on that group only.
type FieldGroup string

const (
	GroupSummary       FieldGroup = "summary"
	GroupTraits        FieldGroup = "personality_traits"
	GroupInterests     FieldGroup = "interests"
	GroupStyle         FieldGroup = "communication_style"
	GroupVocabulary    FieldGroup = "vocabulary"
	GroupEmotionalTone FieldGroup = "emotional_tone"
	GroupTopics        FieldGroup = "topics_and_themes"
	GroupSocialMetrics FieldGroup = "social_behavior_metrics"
)

// allGroups lists every validated group in re-invocation priority order.
//
//nolint:gochecknoglobals // fixed validation order
var allGroups = []FieldGroup{
	GroupSummary,
	GroupTraits,
	GroupInterests,
	GroupStyle,
	GroupVocabulary,
	GroupEmotionalTone,
	GroupTopics,
	GroupSocialMetrics,
}

// focusFor maps a field group to the emphasis clause injected into the
// aggregation prompt when re-invoking for that group.
//
//nolint:gochecknoglobals // static prompt fragments
var focusFor = map[FieldGroup]string{
	GroupSummary:       "the SUMMARY section: write a substantive 2-3 sentence personality summary",
	GroupTraits:        "the PERSONALITY TRAITS section: list at least 3 traits with scores out of 10 and one-line explanations",
	GroupInterests:     "the PRIMARY INTERESTS section: list the person's concrete interests",
	GroupStyle:         "the COMMUNICATION STYLE section: provide formality, enthusiasm, technical level, emoji usage and verbosity on a 0-100 scale plus a style description",
	GroupVocabulary:    "the VOCABULARY section: list common terms, common phrases, enthusiasm markers and industry terms",
	GroupEmotionalTone: "the EMOTIONAL TONE section: describe the dominant emotional register",
	GroupTopics:        "the TOPICS AND THEMES section: list recurring topics",
	GroupSocialMetrics: "the SOCIAL BEHAVIOR METRICS section: rate oversharing, reply frequency, virality seeking, humor usage, controversy tendency and emotional volatility on a 0-100 scale",
}

// Validate checks group completeness against the merged profile and returns
// the groups that still carry sentinel or empty content. An empty result
// means the profile is complete.
func Validate(p profile.Profile) (missing []FieldGroup) {
	for _, g := range allGroups {
		if !groupComplete(p, g) {
			missing = append(missing, g)
		}
	}
	return missing
}

func groupComplete(p profile.Profile, g FieldGroup) (complete bool) {
	switch g {
	case GroupSummary:
		complete = p.Summary != "" && p.Summary != profile.DefaultSummary
	case GroupTraits:
		complete = len(p.Traits) > 0
	case GroupInterests:
		complete = hasNonSentinel(p.Interests, profile.DefaultInterest)
	case GroupStyle:
		s := p.CommunicationStyle
		complete = s.Formality > 0 || s.Enthusiasm > 0 || s.TechnicalLevel > 0 ||
			s.EmojiUsage > 0 || s.Verbosity > 0 ||
			(s.Description != "" && s.Description != profile.DefaultStyleDescription)
	case GroupVocabulary:
		v := p.Vocabulary
		complete = len(v.CommonTerms) > 0 || len(v.CommonPhrases) > 0 ||
			len(v.EnthusiasmMarkers) > 0 || len(v.IndustryTerms) > 0
	case GroupEmotionalTone:
		complete = p.EmotionalTone != "" && p.EmotionalTone != profile.DefaultEmotionalTone
	case GroupTopics:
		complete = hasNonSentinel(p.TopicsAndThemes, profile.DefaultTopic)
	case GroupSocialMetrics:
		complete = !p.SocialBehaviorMetrics.Missing()
	}
	return complete
}

func hasNonSentinel(values []string, sentinel string) (found bool) {
	for _, v := range values {
		if v != "" && v != sentinel {
			found = true
			return found
		}
	}
	return found
}
