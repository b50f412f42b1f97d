package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// Each field is parsed by an ordered list of independent extractors, tried in
// sequence until one matches. First match wins; this is what makes the parser
// tolerant to model formatting drift (numbered vs bulleted vs bold-markdown
// vs colon-separated).

type traitExtractor func(line string) (t profile.Trait, ok bool)

var traitExtractors = []traitExtractor{
	// 1. **Name** 8/10 - explanation
	regexTrait(regexp.MustCompile(`^\d+[.)]\s*\*\*(.+?)\*\*\s*[-:–]?\s*(\d+(?:\.\d+)?)\s*/\s*10\s*[-:–]?\s*(.*)$`)),
	// - Name: 8/10 - explanation
	regexTrait(regexp.MustCompile(`^[-*•]\s*(.+?)\s*[:–]\s*(\d+(?:\.\d+)?)\s*/\s*10\s*[-:–]?\s*(.*)$`)),
	// - Name 8/10 - explanation
	regexTrait(regexp.MustCompile(`^[-*•]\s*(.+?)\s+(\d+(?:\.\d+)?)\s*/\s*10\s*[-:–]?\s*(.*)$`)),
	// **Name** (8/10): explanation
	regexTrait(regexp.MustCompile(`^\*\*(.+?)\*\*\s*\((\d+(?:\.\d+)?)\s*/\s*10\)\s*[-:–]?\s*(.*)$`)),
	// Name Score/10 - explanation (the format the prompt asks for)
	regexTrait(regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*/\s*10\s*[-:–]?\s*(.*)$`)),
	// Name: 8 - explanation (score without the /10)
	regexTrait(regexp.MustCompile(`^(.+?)\s*:\s*(\d+(?:\.\d+)?)\s*[-–]\s*(.+)$`)),
}

func regexTrait(re *regexp.Regexp) (ex traitExtractor) {
	ex = func(line string) (t profile.Trait, ok bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return t, ok
		}
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil || score < 0 || score > 10 {
			return t, ok
		}
		name := cleanItem(m[1])
		if name == "" {
			return t, ok
		}
		t = profile.Trait{
			Name:        name,
			Score:       score,
			Explanation: strings.TrimSpace(m[3]),
		}
		ok = true
		return t, ok
	}
	return ex
}

// extractTrait runs the ordered trait extractors over one line.
func extractTrait(line string) (t profile.Trait, ok bool) {
	for _, ex := range traitExtractors {
		t, ok = ex(line)
		if ok {
			return t, ok
		}
	}
	return t, ok
}

var (
	numberedItemRE = regexp.MustCompile(`^\d+[.)]\s*(.+)$`)
	bulletItemRE   = regexp.MustCompile(`^[-*•]\s*(.+)$`)
	boldWrapRE     = regexp.MustCompile(`^\*\*(.+?)\*\*$`)
)

// extractListItem peels numbering, bullets, and bold markers off a line,
// returning the bare item.
func extractListItem(line string) (item string, ok bool) {
	item = strings.TrimSpace(line)
	if item == "" {
		return item, ok
	}

	if m := numberedItemRE.FindStringSubmatch(item); m != nil {
		item = m[1]
	} else if m := bulletItemRE.FindStringSubmatch(item); m != nil {
		item = m[1]
	}

	item = cleanItem(item)
	ok = item != ""
	return item, ok
}

// keyedLineRE matches "Key: value" lines, tolerating bullets and bold keys.
var keyedLineRE = regexp.MustCompile(`^[-*•\s]*\**([A-Za-z][A-Za-z /]*?)\**\s*[:：]\s*(.+)$`)

// extractKeyed splits a "Key: value" line. The key comes back lowercased
// with spaces collapsed so dispatch can switch on it.
func extractKeyed(line string) (key, value string, ok bool) {
	m := keyedLineRE.FindStringSubmatch(line)
	if m == nil {
		return key, value, ok
	}
	key = strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	value = strings.TrimSpace(m[2])
	ok = value != ""
	return key, value, ok
}

var numberRE = regexp.MustCompile(`\d+(?:\.\d+)?`)

// extractScalar parses a keyed 0-100 metric line.
func extractScalar(line string) (key string, value float64, ok bool) {
	rawKey, rawValue, matched := extractKeyed(line)
	if !matched {
		return key, value, ok
	}

	// Tolerate "75/100", "75%", "75 (high)".
	num := numberRE.FindString(rawValue)
	if num == "" {
		// Categorical fallback: low/medium/high map onto the scalar scale.
		switch strings.ToLower(strings.Fields(rawValue)[0]) {
		case "low":
			value = 20
		case "medium", "moderate":
			value = 50
		case "high":
			value = 80
		default:
			return key, value, ok
		}
		key = rawKey
		ok = true
		return key, value, ok
	}

	parsed, err := strconv.ParseFloat(num, 64)
	if err != nil || parsed < 0 || parsed > 100 {
		return key, value, ok
	}

	key = rawKey
	value = parsed
	ok = true
	return key, value, ok
}

// splitCSV splits a comma-separated model list into cleaned items.
func splitCSV(value string) (items []string) {
	for _, part := range strings.Split(value, ",") {
		if cleaned := cleanItem(part); cleaned != "" {
			items = append(items, cleaned)
		}
	}
	return items
}

// cleanItem strips bold markers, quotes, and stray punctuation from an item.
func cleanItem(item string) (cleaned string) {
	cleaned = strings.TrimSpace(item)
	if m := boldWrapRE.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}
	cleaned = strings.ReplaceAll(cleaned, "**", "")
	cleaned = strings.Trim(cleaned, `"'`+" \t.-–")
	cleaned = strings.TrimSpace(cleaned)
	return cleaned
}
