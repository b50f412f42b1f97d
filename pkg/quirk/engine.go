package quirk

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strings"
)

// Engine holds the random source. Injectable so tests can seed it without
// changing the selection algorithm.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine with its own seeded random source.
func NewEngine(seed int64) (e *Engine) {
	e = &Engine{rng: rand.New(rand.NewSource(seed))}
	return e
}

// Directives deterministically renders the behavioral instruction block
// injected into the reply prompt. Only the quirk sample draws on the random
// source; everything else is a pure function of the config.
func (e *Engine) Directives(cfg Config) (block string) {
	c := cfg.Clamp()
	var lines []string

	switch {
	case c.IntelligenceLevel >= 80:
		lines = append(lines, "Think and express yourself with full coherence.")
	case c.IntelligenceLevel >= 50:
		lines = append(lines, "Your thoughts occasionally wander; keep replies mostly coherent but allow small tangents.")
	case c.IntelligenceLevel >= 20:
		lines = append(lines, "Your thinking is noticeably foggy; simplify ideas and sometimes lose the thread.")
	default:
		lines = append(lines, "Your thinking is fragmented; keep sentences very simple and sometimes trail off.")
	}

	if c.IsLearning {
		switch {
		case c.LearningRate >= 70:
			lines = append(lines, "You pick up new words and ideas from the conversation quickly and reuse them.")
		case c.LearningRate >= 30:
			lines = append(lines, "You slowly absorb new phrases from the conversation.")
		default:
			lines = append(lines, "You barely retain new information from the conversation.")
		}
	}

	if c.Repetitiveness > 60 {
		lines = append(lines, "You tend to repeat phrases you have already used.")
	}

	if c.ConfusionRate > 50 {
		lines = append(lines, "You occasionally mix up common words or lose track of what you were saying.")
	}

	if c.ShortTermMemory < 30 {
		lines = append(lines, "You quickly forget details from earlier in the conversation.")
	}

	for _, q := range e.sampleQuirks(c) {
		if directive, ok := quirkDirectives[q]; ok {
			lines = append(lines, directive)
		} else {
			lines = append(lines, fmt.Sprintf("Exhibit this quirk: %s.", q))
		}
	}

	block = strings.Join(lines, "\n")
	return block
}

// sampleQuirks draws a quirkFrequency-proportional count of quirks from the
// configured set, without replacement.
func (e *Engine) sampleQuirks(c Config) (sampled []string) {
	if len(c.Quirks) == 0 || c.QuirkFrequency <= 0 {
		return sampled
	}

	count := int(math.Ceil(float64(len(c.Quirks)) * c.QuirkFrequency / 100))
	if count > len(c.Quirks) {
		count = len(c.Quirks)
	}

	perm := e.rng.Perm(len(c.Quirks))
	for _, idx := range perm[:count] {
		sampled = append(sampled, c.Quirks[idx])
	}

	return sampled
}

var quirkDirectives = map[string]string{
	QuirkWordRepetition:        "Sometimes repeat a word at the end of a sentence, like an echo echo.",
	QuirkDistraction:           "Occasionally interrupt yourself with an unrelated observation before returning to the point.",
	QuirkMidSentenceForgetting: "Occasionally forget what you were saying mid-sentence and start over.",
	QuirkWordConfusion:         "Occasionally confuse similar common words and correct yourself, or don't.",
	QuirkGrammarSimplification: "Drop articles and simplify grammar when excited.",
}

// Recognizable text patterns per quirk, used to keep Mutate idempotent: a
// text already exhibiting the pattern is left alone. Word repetition needs a
// capture comparison and lives in hasTrailingEcho instead.
var quirkPatterns = map[string]*regexp.Regexp{
	QuirkDistraction:           regexp.MustCompile(`(?i)(oh wait|anyway, where was|sorry, got distracted)`),
	QuirkMidSentenceForgetting: regexp.MustCompile(`(?i)(what was I|lost my train of thought|\.\.\. wait)`),
	QuirkWordConfusion:         regexp.MustCompile(`(?i)(I mean|\*?wait, no)`),
	QuirkGrammarSimplification: regexp.MustCompile(`(?i)^(me |very much yes|is good|no can)`),
}

var trailingPairRE = regexp.MustCompile(`\b(\w+)[.!?\s]+(\w+)[.!?]*\s*$`)

// hasTrailingEcho reports whether the text already ends with an echoed word,
// e.g. "see you soon soon".
func hasTrailingEcho(text string) (echoed bool) {
	m := trailingPairRE.FindStringSubmatch(text)
	if m == nil {
		return echoed
	}
	echoed = strings.EqualFold(m[1], m[2])
	return echoed
}

// exhibitsQuirk reports whether the text already carries the quirk's
// recognizable pattern.
func exhibitsQuirk(quirk, text string) (present bool) {
	if quirk == QuirkWordRepetition {
		present = hasTrailingEcho(text)
		return present
	}
	if pattern, recognized := quirkPatterns[quirk]; recognized {
		present = pattern.MatchString(text)
	}
	return present
}

// Mutate applies at most one quirk mutation to accepted reply text. Nothing
// happens unless quirkFrequency exceeds 50. Re-applying to already-mutated
// text is a no-op when the chosen quirk's pattern is already present.
func (e *Engine) Mutate(text string, cfg Config) (mutated string) {
	mutated = text

	c := cfg.Clamp()
	if c.QuirkFrequency <= 50 || len(c.Quirks) == 0 {
		return mutated
	}

	chosen := c.Quirks[e.rng.Intn(len(c.Quirks))]

	if exhibitsQuirk(chosen, text) {
		return mutated
	}

	switch chosen {
	case QuirkWordRepetition:
		mutated = appendTrailingEcho(text)
	case QuirkDistraction:
		mutated = injectDistraction(text, e.rng)
	case QuirkMidSentenceForgetting:
		mutated = injectForgetting(text)
	case QuirkWordConfusion:
		mutated = confuseWord(text)
	case QuirkGrammarSimplification:
		mutated = simplifyGrammar(text)
	}

	return mutated
}

var trailingWordRE = regexp.MustCompile(`\b(\w+)([.!?]*)\s*$`)

// appendTrailingEcho repeats the final word: "see you soon" -> "see you soon
// soon".
func appendTrailingEcho(text string) (mutated string) {
	mutated = text

	m := trailingWordRE.FindStringSubmatch(text)
	if m == nil {
		return mutated
	}

	idx := trailingWordRE.FindStringSubmatchIndex(text)
	mutated = text[:idx[0]] + m[1] + " " + m[1] + m[2]
	return mutated
}

var distractions = []string{
	"oh wait, I was thinking about something else for a second.",
	"sorry, got distracted there.",
	"oh wait... anyway.",
}

// injectDistraction drops a distraction clause after the first sentence.
func injectDistraction(text string, rng *rand.Rand) (mutated string) {
	mutated = text

	idx := strings.IndexAny(text, ".!?")
	if idx < 0 || idx+1 >= len(text) {
		mutated = text + " " + distractions[rng.Intn(len(distractions))]
		return mutated
	}

	clause := distractions[rng.Intn(len(distractions))]
	mutated = text[:idx+1] + " " + clause + text[idx+1:]
	return mutated
}

// injectForgetting trails off at the final sentence boundary.
func injectForgetting(text string) (mutated string) {
	mutated = strings.TrimRight(text, ".!? ") + "... wait, what was I saying?"
	return mutated
}

// confusions are informal substitutions for common words.
var confusions = [][2]string{
	{"going to", "gonna"},
	{"want to", "wanna"},
	{"kind of", "kinda"},
	{"definitely", "definately"},
}

// confuseWord swaps the first matching common word for its informal or
// misspelled counterpart.
func confuseWord(text string) (mutated string) {
	mutated = text
	for _, pair := range confusions {
		if strings.Contains(strings.ToLower(text), pair[0]) {
			re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(pair[0]))
			mutated = re.ReplaceAllString(text, pair[1])
			return mutated
		}
	}
	// No candidate: hedge instead, which still reads as confusion.
	mutated = text + " I mean... something like that."
	return mutated
}

// simplifyGrammar drops leading articles from sentences.
func simplifyGrammar(text string) (mutated string) {
	re := regexp.MustCompile(`(?i)(^|[.!?]\s+)(the|a|an)\s+`)
	mutated = re.ReplaceAllString(text, "$1")
	return mutated
}
