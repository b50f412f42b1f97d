package profile

import (
	"sort"
	"strings"
)

// Tuning is the caller-supplied overlay adjusting a synthesized profile and
// steering reply style. Style scalars are 0-100.
type Tuning struct {
	Formality      float64 `json:"formality"`
	Enthusiasm     float64 `json:"enthusiasm"`
	TechnicalLevel float64 `json:"technical_level"`
	EmojiUsage     float64 `json:"emoji_usage"`
	Verbosity      float64 `json:"verbosity"`

	// TraitModifiers shift trait scores by name; deltas are clamped to [-2, 2]
	// and the resulting score to [0, 10].
	TraitModifiers map[string]float64 `json:"trait_modifiers,omitempty"`

	// InterestWeights rank interests 0-100 by name. Apply orders interests by
	// descending weight; unweighted interests sit at the midpoint.
	InterestWeights map[string]float64 `json:"interest_weights,omitempty"`

	// CustomInterests are appended if not already present.
	CustomInterests []string `json:"custom_interests,omitempty"`
}

// DefaultTuning returns a neutral midpoint tuning.
func DefaultTuning() (t Tuning) {
	t = Tuning{
		Formality:      50,
		Enthusiasm:     50,
		TechnicalLevel: 50,
		EmojiUsage:     50,
		Verbosity:      50,
	}
	return t
}

// Apply overlays the tuning onto a copy of the profile. The input profile is
// not mutated.
func (t Tuning) Apply(p Profile) (tuned Profile) {
	tuned = p

	if len(t.TraitModifiers) > 0 {
		traits := make([]Trait, len(p.Traits))
		copy(traits, p.Traits)
		for i := range traits {
			delta, ok := lookupFold(t.TraitModifiers, traits[i].Name)
			if !ok {
				continue
			}
			delta = Clamp(delta, -2, 2)
			traits[i].Score = Clamp(traits[i].Score+delta, 0, 10)
		}
		tuned.Traits = traits
	}

	if len(t.CustomInterests) > 0 {
		interests := make([]string, len(tuned.Interests))
		copy(interests, tuned.Interests)
		for _, ci := range t.CustomInterests {
			if !containsFold(interests, ci) {
				interests = append(interests, ci)
			}
		}
		tuned.Interests = interests
	}

	if len(t.InterestWeights) > 0 {
		interests := make([]string, len(tuned.Interests))
		copy(interests, tuned.Interests)
		sort.SliceStable(interests, func(i, j int) bool {
			return t.interestWeight(interests[i]) > t.interestWeight(interests[j])
		})
		tuned.Interests = interests
	}

	return tuned
}

const defaultInterestWeight = 50

func (t Tuning) interestWeight(interest string) (weight float64) {
	weight = defaultInterestWeight
	if w, ok := lookupFold(t.InterestWeights, interest); ok {
		weight = Clamp(w, 0, 100)
	}
	return weight
}

func lookupFold(m map[string]float64, key string) (value float64, ok bool) {
	if v, exact := m[key]; exact {
		value = v
		ok = true
		return value, ok
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			value = v
			ok = true
			return value, ok
		}
	}
	return value, ok
}

func containsFold(values []string, target string) (found bool) {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			found = true
			return found
		}
	}
	return found
}
