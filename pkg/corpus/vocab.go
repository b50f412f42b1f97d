package corpus

import (
	"sort"
	"strings"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// Word-level statistics computed straight from the corpus. These carry real
// frequencies and percentages, unlike the model-derived vocabulary fields.

const (
	topTerms  = 15
	topNGrams = 10
)

// stopwords excluded from common-term counting. Deliberately small: the goal
// is characteristic vocabulary, not full NLP.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "for": true,
	"is": true, "it": true, "this": true, "that": true, "with": true,
	"was": true, "are": true, "be": true, "i": true, "you": true, "we": true,
	"my": true, "me": true, "so": true, "if": true, "as": true, "not": true,
	"have": true, "has": true, "just": true, "its": true, "im": true,
}

// VocabularyStats computes corpus-derived vocabulary: common terms with
// frequency percentages plus top bigrams and trigrams.
func VocabularyStats(posts []Post) (vocab profile.Vocabulary) {
	termCounts := map[string]int{}
	bigramCounts := map[string]int{}
	trigramCounts := map[string]int{}
	total := 0

	for _, p := range posts {
		words := tokenize(p.Text)
		for i, w := range words {
			total++
			if !stopwords[w] && len(w) > 2 {
				termCounts[w]++
			}
			if i+1 < len(words) {
				bigramCounts[words[i]+" "+words[i+1]]++
			}
			if i+2 < len(words) {
				trigramCounts[words[i]+" "+words[i+1]+" "+words[i+2]]++
			}
		}
	}

	vocab.CommonTerms = topCounted(termCounts, total, topTerms, 2)
	vocab.NGrams.Bigrams = topCounted(bigramCounts, total, topNGrams, 2)
	vocab.NGrams.Trigrams = topCounted(trigramCounts, total, topNGrams, 2)

	return vocab
}

// tokenize lowercases and strips everything but letters, digits, and
// apostrophes-collapsed word cores.
func tokenize(text string) (words []string) {
	cleaner := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}
	cleaned := strings.Map(cleaner, text)
	words = strings.Fields(cleaned)
	return words
}

// topCounted returns the most frequent entries seen at least minCount times,
// sorted by descending count with alphabetical tiebreak for determinism.
func topCounted(counts map[string]int, total, limit, minCount int) (terms []profile.Term) {
	for term, count := range counts {
		if count < minCount {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		terms = append(terms, profile.Term{Term: term, Frequency: count, Percentage: pct})
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Frequency != terms[j].Frequency {
			return terms[i].Frequency > terms[j].Frequency
		}
		return terms[i].Term < terms[j].Term
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}

	return terms
}
