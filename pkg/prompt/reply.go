package prompt

import (
	"fmt"
	"strings"

	"github.com/soulforge-ai/soulforge/pkg/profile"
)

// FailureSentinel is what the model is told to emit when it cannot answer in
// character. The style validator rejects any reply containing it.
const FailureSentinel = "[GENERATION_FAILED]"

// Turn is one prior message in the conversation.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// ReplyRequest carries everything the reply prompt needs.
type ReplyRequest struct {
	Profile profile.Profile
	Tuning  profile.Tuning
	// ConsciousnessDirectives is the quirk engine's narrative block; it is
	// injected into the prompt, not applied after the fact.
	ConsciousnessDirectives string
	History                 []Turn
	Message                 string
	// StyleVariation rotates deterministic phrasing nudges across
	// regeneration attempts.
	StyleVariation int
}

// styleVariations are the deterministic retry nudges, indexed by
// StyleVariation modulo the list length.
var styleVariations = []string{
	"",
	"Take a noticeably different angle than you usually would.",
	"Keep it more compact than your usual reply.",
	"Lead with a question or an observation instead of a statement.",
}

// BuildReply renders the system and user prompts for one chat turn.
func BuildReply(req ReplyRequest) (system, user string) {
	var sb strings.Builder

	p := req.Profile

	sb.WriteString("You are roleplaying as a specific person. Stay in character at all times.\n\n")
	sb.WriteString("WHO YOU ARE:\n")
	sb.WriteString(p.Summary + "\n\n")

	if len(p.Traits) > 0 {
		sb.WriteString("TRAITS:\n")
		for _, t := range p.Traits {
			sb.WriteString(fmt.Sprintf("- %s (%.0f/10): %s\n", t.Name, t.Score, t.Explanation))
		}
		sb.WriteString("\n")
	}

	if len(p.Interests) > 0 {
		sb.WriteString("INTERESTS: " + strings.Join(p.Interests, ", ") + "\n\n")
	}

	sb.WriteString("VOICE:\n")
	sb.WriteString(p.CommunicationStyle.Description + "\n")
	if markers := p.Vocabulary.EnthusiasmMarkers; len(markers) > 0 {
		sb.WriteString("Phrases you actually use: " + strings.Join(markers, ", ") + "\n")
	}
	sb.WriteString("Emotional tone: " + p.EmotionalTone + "\n\n")

	sb.WriteString("STYLE RULES (hard constraints, the reply is rejected if violated):\n")
	for _, rule := range StyleDirectives(req.Tuning) {
		sb.WriteString("- " + rule + "\n")
	}
	sb.WriteString("\n")

	if req.ConsciousnessDirectives != "" {
		sb.WriteString("STATE OF MIND:\n")
		sb.WriteString(req.ConsciousnessDirectives)
		sb.WriteString("\n\n")
	}

	if v := styleVariations[abs(req.StyleVariation)%len(styleVariations)]; v != "" {
		sb.WriteString("VARIATION: " + v + "\n\n")
	}

	sb.WriteString("If you truly cannot produce an in-character reply, output exactly " + FailureSentinel + " and nothing else.")

	system = sb.String()

	var ub strings.Builder
	for _, turn := range req.History {
		ub.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}
	ub.WriteString("user: " + req.Message + "\n")
	ub.WriteString("assistant:")
	user = ub.String()

	return system, user
}

// StyleDirectives derives the hard style constraints from tuning bands.
// Mirrors the validator in pkg/reply: what is demanded here is what gets
// checked there.
func StyleDirectives(t profile.Tuning) (rules []string) {
	switch {
	case t.EmojiUsage > 80:
		rules = append(rules, "Use at least 3 emoji in the reply.")
	case t.EmojiUsage < 20:
		rules = append(rules, "Do not use any emoji.")
	}

	switch {
	case t.Enthusiasm > 80:
		rules = append(rules, "Be visibly enthusiastic: use at least 2 exclamation marks.")
	case t.Enthusiasm < 20:
		rules = append(rules, "Stay flat and measured: no exclamation marks.")
	}

	switch {
	case t.Formality > 80:
		rules = append(rules, "Write formally: no slang, full sentences.")
	case t.Formality < 20:
		rules = append(rules, "Write casually, like a quick message to a friend.")
	}

	switch {
	case t.TechnicalLevel > 80:
		rules = append(rules, "Use precise technical language where it fits.")
	case t.TechnicalLevel < 20:
		rules = append(rules, "Avoid jargon entirely; explain in plain words.")
	}

	switch {
	case t.Verbosity > 80:
		rules = append(rules, "Give a thorough, multi-sentence reply.")
	case t.Verbosity < 20:
		rules = append(rules, "Keep the reply to one or two short sentences.")
	}

	return rules
}

func abs(n int) (a int) {
	a = n
	if a < 0 {
		a = -a
	}
	return a
}
