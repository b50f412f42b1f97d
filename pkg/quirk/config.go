// Package quirk simulates a degraded "consciousness" level: it renders
// behavioral directives into the reply prompt and probabilistically mutates
// accepted reply text with recognizable imperfections.
package quirk

import "github.com/soulforge-ai/soulforge/pkg/profile"

// Known quirk identifiers. Only these have post-hoc text mutations; unknown
// identifiers still appear in the narrative directives.
const (
	QuirkWordRepetition        = "word-repetition"
	QuirkDistraction           = "distraction"
	QuirkMidSentenceForgetting = "mid-sentence-forgetting"
	QuirkWordConfusion         = "word-confusion"
	QuirkGrammarSimplification = "grammar-simplification"
)

// Config is the consciousness state for one request. Immutable once built;
// numeric fields are clamped to [0, 100].
type Config struct {
	IntelligenceLevel float64  `json:"intelligence_level"`
	VocabularyRange   float64  `json:"vocabulary_range"`
	GrammarAccuracy   float64  `json:"grammar_accuracy"`
	IsLearning        bool     `json:"is_learning"`
	LearningRate      float64  `json:"learning_rate"`
	Repetitiveness    float64  `json:"repetitiveness"`
	ConfusionRate     float64  `json:"confusion_rate"`
	ContextRetention  float64  `json:"context_retention"`
	ShortTermMemory   float64  `json:"short_term_memory"`
	QuirkFrequency    float64  `json:"quirk_frequency"`
	Quirks            []string `json:"quirks"`
}

// DefaultConfig is a fully-coherent consciousness with no quirks.
func DefaultConfig() (cfg Config) {
	cfg = Config{
		IntelligenceLevel: 100,
		VocabularyRange:   100,
		GrammarAccuracy:   100,
		LearningRate:      50,
		ContextRetention:  100,
		ShortTermMemory:   100,
	}
	return cfg
}

// Clamp bounds every numeric field to [0, 100] and returns the result.
func (c Config) Clamp() (clamped Config) {
	clamped = c
	clamped.IntelligenceLevel = profile.Clamp(c.IntelligenceLevel, 0, 100)
	clamped.VocabularyRange = profile.Clamp(c.VocabularyRange, 0, 100)
	clamped.GrammarAccuracy = profile.Clamp(c.GrammarAccuracy, 0, 100)
	clamped.LearningRate = profile.Clamp(c.LearningRate, 0, 100)
	clamped.Repetitiveness = profile.Clamp(c.Repetitiveness, 0, 100)
	clamped.ConfusionRate = profile.Clamp(c.ConfusionRate, 0, 100)
	clamped.ContextRetention = profile.Clamp(c.ContextRetention, 0, 100)
	clamped.ShortTermMemory = profile.Clamp(c.ShortTermMemory, 0, 100)
	clamped.QuirkFrequency = profile.Clamp(c.QuirkFrequency, 0, 100)
	return clamped
}
