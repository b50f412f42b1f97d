package profile

// Sentinel defaults. A field still holding its sentinel after parsing is
// treated as missing by the validation controller.
const (
	DefaultSummary          = "A thoughtful individual with diverse interests"
	DefaultInterest         = "General topics"
	DefaultStyleDescription = "Conversational and balanced"
	DefaultEmotionalTone    = "Balanced and measured"
	DefaultTopic            = "General discussion"
)

// ActiveThreshold is the score at or above which a trait counts as active
// in the boolean interpretation used by the style-matching consumer.
const ActiveThreshold = 7.0

// Trait is a single personality trait with a 0-10 intensity score.
type Trait struct {
	Name              string   `json:"name"`
	Score             float64  `json:"score"`
	Explanation       string   `json:"explanation"`
	Details           string   `json:"details,omitempty"`
	RelatedTraitNames []string `json:"related_trait_names,omitempty"`
}

// Active returns the thresholded boolean interpretation of the score.
// Consumers that want intensity read Score directly.
func (t Trait) Active() (active bool) {
	active = t.Score >= ActiveThreshold
	return active
}

// WritingPatterns describes observable formatting habits.
type WritingPatterns struct {
	Capitalization string   `json:"capitalization"`
	Punctuation    []string `json:"punctuation"`
	LineBreaks     string   `json:"line_breaks"`
	OpeningPhrases []string `json:"opening_phrases"`
	FramingPhrases []string `json:"framing_phrases"`
	ClosingPhrases []string `json:"closing_phrases"`
}

// ContextualVariations describes how the style shifts by context.
type ContextualVariations struct {
	Business  string `json:"business"`
	Casual    string `json:"casual"`
	Technical string `json:"technical"`
	Crisis    string `json:"crisis"`
}

// CommunicationStyle holds the 0-100 style scalars plus free-text detail.
type CommunicationStyle struct {
	Formality            float64              `json:"formality"`
	Enthusiasm           float64              `json:"enthusiasm"`
	TechnicalLevel       float64              `json:"technical_level"`
	EmojiUsage           float64              `json:"emoji_usage"`
	Verbosity            float64              `json:"verbosity"`
	Description          string               `json:"description"`
	Patterns             WritingPatterns      `json:"patterns"`
	ContextualVariations ContextualVariations `json:"contextual_variations"`
}

// Term is a vocabulary entry. Frequency and Percentage are only set when the
// term was derived from direct corpus statistics rather than model output.
type Term struct {
	Term       string  `json:"term"`
	Frequency  int     `json:"frequency,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
}

// NGrams holds corpus-derived word sequences.
type NGrams struct {
	Bigrams  []Term `json:"bigrams"`
	Trigrams []Term `json:"trigrams"`
}

// Vocabulary holds characteristic language use.
type Vocabulary struct {
	CommonTerms       []Term   `json:"common_terms"`
	CommonPhrases     []Term   `json:"common_phrases"`
	EnthusiasmMarkers []string `json:"enthusiasm_markers"`
	IndustryTerms     []string `json:"industry_terms"`
	NGrams            NGrams   `json:"ngrams"`
}

// EmotionalIntelligence holds EQ-related observations.
type EmotionalIntelligence struct {
	LeadershipStyle    string   `json:"leadership_style"`
	ChallengeResponse  string   `json:"challenge_response"`
	AnalyticalTone     string   `json:"analytical_tone"`
	SupportivePatterns []string `json:"supportive_patterns"`
}

// SocialBehaviorMetrics are 0-100 behavioral scalars. An all-zero (or
// uniformly low) set is treated as missing by the validation controller.
type SocialBehaviorMetrics struct {
	Oversharing         float64 `json:"oversharing"`
	ReplyFrequency      float64 `json:"reply_frequency"`
	ViralitySeeking     float64 `json:"virality_seeking"`
	HumorUsage          float64 `json:"humor_usage"`
	ControversyTendency float64 `json:"controversy_tendency"`
	EmotionalVolatility float64 `json:"emotional_volatility"`
}

// Missing reports whether the metrics look unset. All-zero is definitely
// unset; a uniformly low block (every metric under 5) is treated the same
// way because real corpora never score that flat.
func (m SocialBehaviorMetrics) Missing() (missing bool) {
	values := m.values()
	missing = true
	for _, v := range values {
		if v >= 5 {
			missing = false
			return missing
		}
	}
	return missing
}

func (m SocialBehaviorMetrics) values() (values []float64) {
	values = []float64{
		m.Oversharing, m.ReplyFrequency, m.ViralitySeeking,
		m.HumorUsage, m.ControversyTendency, m.EmotionalVolatility,
	}
	return values
}

// Profile is the central personality artifact. Every field is always
// populated: callers never see a partially-undefined schema, even after
// total upstream failure.
type Profile struct {
	Summary               string                `json:"summary"`
	Traits                []Trait               `json:"traits"`
	Interests             []string              `json:"interests"`
	CommunicationStyle    CommunicationStyle    `json:"communication_style"`
	Vocabulary            Vocabulary            `json:"vocabulary"`
	EmotionalIntelligence EmotionalIntelligence `json:"emotional_intelligence"`
	SocialBehaviorMetrics SocialBehaviorMetrics `json:"social_behavior_metrics"`
	TopicsAndThemes       []string              `json:"topics_and_themes"`
	EmotionalTone         string                `json:"emotional_tone"`
}

// NewDefault returns a fully-populated safe profile.
func NewDefault() (p Profile) {
	p = Profile{}
	p.ApplyDefaults()
	return p
}

// ApplyDefaults fills every empty structural field with its sentinel so the
// profile is schema-valid even when parsing yielded nothing.
func (p *Profile) ApplyDefaults() {
	if p.Summary == "" {
		p.Summary = DefaultSummary
	}
	if len(p.Interests) == 0 {
		p.Interests = []string{DefaultInterest}
	}
	if p.CommunicationStyle.Description == "" {
		p.CommunicationStyle.Description = DefaultStyleDescription
	}
	if p.CommunicationStyle.Patterns.Capitalization == "" {
		p.CommunicationStyle.Patterns.Capitalization = "standard"
	}
	if len(p.CommunicationStyle.Patterns.Punctuation) == 0 {
		p.CommunicationStyle.Patterns.Punctuation = []string{"."}
	}
	if p.CommunicationStyle.Patterns.LineBreaks == "" {
		p.CommunicationStyle.Patterns.LineBreaks = "minimal"
	}
	if len(p.TopicsAndThemes) == 0 {
		p.TopicsAndThemes = []string{DefaultTopic}
	}
	if p.EmotionalTone == "" {
		p.EmotionalTone = DefaultEmotionalTone
	}
	if p.EmotionalIntelligence.LeadershipStyle == "" {
		p.EmotionalIntelligence.LeadershipStyle = "collaborative"
	}
	if p.EmotionalIntelligence.ChallengeResponse == "" {
		p.EmotionalIntelligence.ChallengeResponse = "measured"
	}
	if p.EmotionalIntelligence.AnalyticalTone == "" {
		p.EmotionalIntelligence.AnalyticalTone = "balanced"
	}
}

// Clamp bounds a value to [lo, hi].
func Clamp(v, lo, hi float64) (clamped float64) {
	clamped = v
	if clamped < lo {
		clamped = lo
	}
	if clamped > hi {
		clamped = hi
	}
	return clamped
}
