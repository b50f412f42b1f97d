// Package reply generates style-constrained chat replies for a synthesized
// profile: prompt construction, validation against the tuning's hard style
// bands, regeneration on violations, and the post-acceptance quirk pass.
package reply

import (
	"strings"
	"unicode"

	"github.com/soulforge-ai/soulforge/pkg/profile"
	"github.com/soulforge-ai/soulforge/pkg/prompt"
)

const minReplyRunes = 2

// Violation names a style rule the reply broke. Empty means the reply passed.
type Violation string

const (
	ViolationNone         Violation = ""
	ViolationEmpty        Violation = "empty_reply"
	ViolationSentinel     Violation = "generation_failed_sentinel"
	ViolationEmojiMissing Violation = "emoji_missing"
	ViolationEmojiBanned  Violation = "emoji_banned"
	ViolationExclamations Violation = "exclamations_missing"
	ViolationFlatness     Violation = "exclamations_banned"
)

// ValidateStyle checks a candidate reply against the tuning's hard bands.
// The bands mirror the directives injected by prompt.StyleDirectives.
func ValidateStyle(text string, t profile.Tuning) (v Violation) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minReplyRunes {
		v = ViolationEmpty
		return v
	}

	if strings.Contains(trimmed, prompt.FailureSentinel) {
		v = ViolationSentinel
		return v
	}

	emoji := countEmoji(trimmed)
	switch {
	case t.EmojiUsage > 80 && emoji < 3:
		v = ViolationEmojiMissing
		return v
	case t.EmojiUsage < 20 && emoji > 0:
		v = ViolationEmojiBanned
		return v
	}

	bangs := strings.Count(trimmed, "!")
	switch {
	case t.Enthusiasm > 80 && bangs < 2:
		v = ViolationExclamations
		return v
	case t.Enthusiasm < 20 && bangs > 0:
		v = ViolationFlatness
		return v
	}

	return ViolationNone
}

// countEmoji counts runes in the common emoji blocks, including the
// dingbat and symbol ranges older emoji live in.
func countEmoji(text string) (n int) {
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1FAFF:
			n++
		case r >= 0x2600 && r <= 0x27BF:
			n++
		case r == 0x2764: // heavy black heart
			n++
		case unicode.Is(unicode.So, r) && r >= 0x2190:
			n++
		}
	}
	return n
}
