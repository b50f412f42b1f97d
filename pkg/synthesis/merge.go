// Package synthesis orchestrates profile synthesis: batch-by-batch
// aggregation through the model, merging of partial profiles, and the
// validation/retry controller that drives targeted re-invocation for missing
// field groups.
package synthesis

import (
	"sort"
	"strings"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// Aggregator accumulates partial profiles, one per corpus batch, and merges
// them into a single canonical profile. The merge is recomputed from the
// accumulated parts, so the canonical trait and interest sets do not depend
// on the order parts were added; only floating rounding of averaged scalars
// can differ.
type Aggregator struct {
	parts []profile.Profile
}

// NewAggregator creates an empty aggregator.
func NewAggregator() (a *Aggregator) {
	a = &Aggregator{}
	return a
}

// Add records one batch's parsed partial profile.
func (a *Aggregator) Add(part profile.Profile) {
	a.parts = append(a.parts, part)
}

// Parts reports how many partial profiles have been added.
func (a *Aggregator) Parts() (n int) {
	n = len(a.parts)
	return n
}

// Merged computes the combined profile across all added parts. With no parts
// it returns the safe default profile.
func (a *Aggregator) Merged() (merged profile.Profile) {
	if len(a.parts) == 0 {
		merged = profile.NewDefault()
		return merged
	}

	merged.Summary = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.Summary }), profile.DefaultSummary)
	merged.Traits = MergeTraits(allTraits(a.parts))
	merged.Interests = Consolidate(allStrings(a.parts, func(p profile.Profile) []string { return p.Interests }, profile.DefaultInterest))
	merged.TopicsAndThemes = Consolidate(allStrings(a.parts, func(p profile.Profile) []string { return p.TopicsAndThemes }, profile.DefaultTopic))
	merged.EmotionalTone = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.EmotionalTone }), profile.DefaultEmotionalTone)

	merged.CommunicationStyle = a.mergeStyle()
	merged.Vocabulary = a.mergeVocabulary()
	merged.EmotionalIntelligence = a.mergeEmotionalIQ()
	merged.SocialBehaviorMetrics = a.mergeSocial()

	merged.ApplyDefaults()
	return merged
}

// MergeTraits groups traits by approximate name similarity, keeps the
// highest-scoring trait of each group as canonical, concatenates the other
// explanations as details, and records sibling names. The result is sorted
// by descending score with a name tiebreak.
func MergeTraits(traits []profile.Trait) (merged []profile.Trait) {
	if len(traits) == 0 {
		return merged
	}

	// Deterministic processing order regardless of input order.
	sorted := make([]profile.Trait, len(traits))
	copy(sorted, traits)
	sort.Slice(sorted, func(i, j int) bool {
		ni, nj := normalizeName(sorted[i].Name), normalizeName(sorted[j].Name)
		if ni != nj {
			return ni < nj
		}
		return sorted[i].Score > sorted[j].Score
	})

	var groups [][]profile.Trait
	for _, t := range sorted {
		placed := false
		for gi := range groups {
			if similarName(groups[gi][0].Name, t.Name) {
				groups[gi] = append(groups[gi], t)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []profile.Trait{t})
		}
	}

	for _, group := range groups {
		canonical := group[0]
		for _, t := range group[1:] {
			if t.Score > canonical.Score {
				canonical = t
			}
		}

		var details []string
		var siblings []string
		if canonical.Details != "" {
			details = append(details, canonical.Details)
		}
		for _, t := range group {
			if t.Name == canonical.Name && t.Explanation == canonical.Explanation {
				continue
			}
			if t.Explanation != "" && t.Explanation != canonical.Explanation {
				details = append(details, t.Explanation)
			}
			if !strings.EqualFold(t.Name, canonical.Name) && !containsFold(siblings, t.Name) {
				siblings = append(siblings, t.Name)
			}
		}
		sort.Strings(siblings)

		canonical.Details = strings.Join(dedupe(details), "; ")
		canonical.RelatedTraitNames = siblings
		merged = append(merged, canonical)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Name < merged[j].Name
	})

	return merged
}

// similarName reports whether two trait names belong to the same group:
// case/punctuation-normalized containment, or a shared 4-character prefix
// for longer names.
func similarName(a, b string) (similar bool) {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return similar
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		similar = true
		return similar
	}

	if len(na) >= 4 && len(nb) >= 4 && na[:4] == nb[:4] {
		similar = true
	}

	return similar
}

func normalizeName(name string) (normalized string) {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	normalized = sb.String()
	return normalized
}

// Consolidate groups strings by case-insensitive substring containment and
// keeps the longest string of each group as representative. Output order is
// deterministic and independent of input order.
func Consolidate(items []string) (representatives []string) {
	if len(items) == 0 {
		return representatives
	}

	// Longest first so the representative is seen before its substrings.
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})

	for _, item := range sorted {
		lower := strings.ToLower(item)
		grouped := false
		for _, rep := range representatives {
			if strings.Contains(strings.ToLower(rep), lower) {
				grouped = true
				break
			}
		}
		if !grouped {
			representatives = append(representatives, item)
		}
	}

	sort.Slice(representatives, func(i, j int) bool {
		return strings.ToLower(representatives[i]) < strings.ToLower(representatives[j])
	})

	return representatives
}

func (a *Aggregator) mergeStyle() (style profile.CommunicationStyle) {
	var count float64
	for _, p := range a.parts {
		s := p.CommunicationStyle
		if s.Formality == 0 && s.Enthusiasm == 0 && s.TechnicalLevel == 0 && s.EmojiUsage == 0 && s.Verbosity == 0 {
			continue
		}
		style.Formality += s.Formality
		style.Enthusiasm += s.Enthusiasm
		style.TechnicalLevel += s.TechnicalLevel
		style.EmojiUsage += s.EmojiUsage
		style.Verbosity += s.Verbosity
		count++
	}
	if count > 0 {
		style.Formality /= count
		style.Enthusiasm /= count
		style.TechnicalLevel /= count
		style.EmojiUsage /= count
		style.Verbosity /= count
	}

	style.Description = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.Description }), profile.DefaultStyleDescription)

	style.Patterns.Capitalization = mostCommon(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.Patterns.Capitalization }), "standard")
	style.Patterns.LineBreaks = mostCommon(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.Patterns.LineBreaks }), "minimal")
	style.Patterns.Punctuation = union(allStrings(a.parts, func(p profile.Profile) []string { return p.CommunicationStyle.Patterns.Punctuation }, "."))
	style.Patterns.OpeningPhrases = union(allStrings(a.parts, func(p profile.Profile) []string { return p.CommunicationStyle.Patterns.OpeningPhrases }, ""))
	style.Patterns.FramingPhrases = union(allStrings(a.parts, func(p profile.Profile) []string { return p.CommunicationStyle.Patterns.FramingPhrases }, ""))
	style.Patterns.ClosingPhrases = union(allStrings(a.parts, func(p profile.Profile) []string { return p.CommunicationStyle.Patterns.ClosingPhrases }, ""))

	style.ContextualVariations.Business = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.ContextualVariations.Business }), "")
	style.ContextualVariations.Casual = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.ContextualVariations.Casual }), "")
	style.ContextualVariations.Technical = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.ContextualVariations.Technical }), "")
	style.ContextualVariations.Crisis = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.CommunicationStyle.ContextualVariations.Crisis }), "")

	return style
}

func (a *Aggregator) mergeVocabulary() (vocab profile.Vocabulary) {
	vocab.CommonTerms = unionTerms(allTerms(a.parts, func(v profile.Vocabulary) []profile.Term { return v.CommonTerms }))
	vocab.CommonPhrases = unionTerms(allTerms(a.parts, func(v profile.Vocabulary) []profile.Term { return v.CommonPhrases }))
	vocab.EnthusiasmMarkers = union(allStrings(a.parts, func(p profile.Profile) []string { return p.Vocabulary.EnthusiasmMarkers }, ""))
	vocab.IndustryTerms = union(allStrings(a.parts, func(p profile.Profile) []string { return p.Vocabulary.IndustryTerms }, ""))
	return vocab
}

func (a *Aggregator) mergeEmotionalIQ() (eq profile.EmotionalIntelligence) {
	eq.LeadershipStyle = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.EmotionalIntelligence.LeadershipStyle }), "collaborative")
	eq.ChallengeResponse = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.EmotionalIntelligence.ChallengeResponse }), "measured")
	eq.AnalyticalTone = longestNonSentinel(collect(a.parts, func(p profile.Profile) string { return p.EmotionalIntelligence.AnalyticalTone }), "balanced")
	eq.SupportivePatterns = union(allStrings(a.parts, func(p profile.Profile) []string { return p.EmotionalIntelligence.SupportivePatterns }, ""))
	return eq
}

func (a *Aggregator) mergeSocial() (metrics profile.SocialBehaviorMetrics) {
	var count float64
	for _, p := range a.parts {
		m := p.SocialBehaviorMetrics
		if m.Missing() {
			continue
		}
		metrics.Oversharing += m.Oversharing
		metrics.ReplyFrequency += m.ReplyFrequency
		metrics.ViralitySeeking += m.ViralitySeeking
		metrics.HumorUsage += m.HumorUsage
		metrics.ControversyTendency += m.ControversyTendency
		metrics.EmotionalVolatility += m.EmotionalVolatility
		count++
	}
	if count > 0 {
		metrics.Oversharing /= count
		metrics.ReplyFrequency /= count
		metrics.ViralitySeeking /= count
		metrics.HumorUsage /= count
		metrics.ControversyTendency /= count
		metrics.EmotionalVolatility /= count
	}
	return metrics
}

// Helpers shared by the merge paths. All outputs are sorted so the merge
// stays order-independent.

func collect(parts []profile.Profile, get func(profile.Profile) string) (values []string) {
	for _, p := range parts {
		values = append(values, get(p))
	}
	return values
}

func allStrings(parts []profile.Profile, get func(profile.Profile) []string, sentinel string) (values []string) {
	for _, p := range parts {
		for _, v := range get(p) {
			if v == "" || (sentinel != "" && v == sentinel) {
				continue
			}
			values = append(values, v)
		}
	}
	return values
}

func allTraits(parts []profile.Profile) (traits []profile.Trait) {
	for _, p := range parts {
		traits = append(traits, p.Traits...)
	}
	return traits
}

func allTerms(parts []profile.Profile, get func(profile.Vocabulary) []profile.Term) (terms []profile.Term) {
	for _, p := range parts {
		terms = append(terms, get(p.Vocabulary)...)
	}
	return terms
}

// longestNonSentinel picks the longest value that is neither empty nor the
// sentinel, with a lexical tiebreak. Falls back to empty.
func longestNonSentinel(values []string, sentinel string) (best string) {
	for _, v := range values {
		if v == "" || v == sentinel {
			continue
		}
		if len(v) > len(best) || (len(v) == len(best) && v < best) {
			best = v
		}
	}
	return best
}

// mostCommon picks the most frequent non-empty, non-fallback value with a
// lexical tiebreak.
func mostCommon(values []string, fallback string) (winner string) {
	counts := map[string]int{}
	for _, v := range values {
		if v == "" || v == fallback {
			continue
		}
		counts[v]++
	}

	best := 0
	for v, n := range counts {
		if n > best || (n == best && (winner == "" || v < winner)) {
			best = n
			winner = v
		}
	}
	return winner
}

// union returns the case-insensitive set union, sorted.
func union(values []string) (set []string) {
	seen := map[string]bool{}
	for _, v := range values {
		key := strings.ToLower(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		set = append(set, v)
	}
	sort.Slice(set, func(i, j int) bool {
		return strings.ToLower(set[i]) < strings.ToLower(set[j])
	})
	return set
}

// unionTerms merges terms by case-insensitive name, summing corpus-derived
// frequencies, sorted by descending frequency then name.
func unionTerms(terms []profile.Term) (set []profile.Term) {
	byName := map[string]profile.Term{}
	for _, t := range terms {
		key := strings.ToLower(t.Term)
		if key == "" {
			continue
		}
		if existing, ok := byName[key]; ok {
			existing.Frequency += t.Frequency
			existing.Percentage += t.Percentage
			byName[key] = existing
			continue
		}
		byName[key] = t
	}

	for _, t := range byName {
		set = append(set, t)
	}
	sort.Slice(set, func(i, j int) bool {
		if set[i].Frequency != set[j].Frequency {
			return set[i].Frequency > set[j].Frequency
		}
		return strings.ToLower(set[i].Term) < strings.ToLower(set[j].Term)
	})
	return set
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

func dedupe(values []string) (unique []string) {
	seen := map[string]bool{}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}
