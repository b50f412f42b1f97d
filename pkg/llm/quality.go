package llm

import (
	"strings"
)

// QualityFloor is the minimum score an accepted completion may have. Anything
// below it is treated as a failed call and retried.
const QualityFloor = 0.7

const (
	minAcceptableLen = 50
	maxAcceptableLen = 500

	lengthPenalty     = 0.35
	repetitionPenalty = 0.25
	similarityPenalty = 0.35

	overlapThreshold = 0.7
)

// ScoreQuality rates a completion in [0, 1]. Penalized: responses shorter
// than 50 or longer than 500 characters, immediate back-to-back
// self-repetition, and >70% token overlap with any previously accepted
// response under the same regeneration key.
func ScoreQuality(text string, previous []string) (score float64) {
	score = scoreWithCeiling(text, previous, maxAcceptableLen)
	return score
}

// scoreWithCeiling is ScoreQuality with a configurable upper length bound.
// Ceiling 0 disables the bound; personality aggregations are expected to run
// long.
func scoreWithCeiling(text string, previous []string, ceiling int) (score float64) {
	score = 1.0

	length := len([]rune(text))
	if length < minAcceptableLen || (ceiling > 0 && length > ceiling) {
		score -= lengthPenalty
	}

	if hasImmediateRepetition(text) {
		score -= repetitionPenalty
	}

	for _, prior := range previous {
		if tokenOverlap(text, prior) > overlapThreshold {
			score -= similarityPenalty
			break
		}
	}

	if score < 0 {
		score = 0
	}

	return score
}

// hasImmediateRepetition detects a word run repeated back-to-back, e.g.
// "really great really great". Runs of 2-5 words are checked.
func hasImmediateRepetition(text string) (repeated bool) {
	words := strings.Fields(strings.ToLower(text))

	for runLen := 2; runLen <= 5; runLen++ {
		for i := 0; i+2*runLen <= len(words); i++ {
			if sameRun(words[i:i+runLen], words[i+runLen:i+2*runLen]) {
				repeated = true
				return repeated
			}
		}
	}

	return repeated
}

func sameRun(a, b []string) (same bool) {
	for i := range a {
		if a[i] != b[i] {
			return same
		}
	}
	same = true
	return same
}

// tokenOverlap computes the fraction of a's distinct tokens also present in
// b, case-insensitively.
func tokenOverlap(a, b string) (overlap float64) {
	aTokens := tokenSet(a)
	if len(aTokens) == 0 {
		return overlap
	}
	bTokens := tokenSet(b)

	shared := 0
	for tok := range aTokens {
		if bTokens[tok] {
			shared++
		}
	}

	overlap = float64(shared) / float64(len(aTokens))
	return overlap
}

func tokenSet(text string) (set map[string]bool) {
	set = map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,!?;:\"'()")] = true
	}
	delete(set, "")
	return set
}
