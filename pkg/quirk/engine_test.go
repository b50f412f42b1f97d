package quirk

import (
	"strings"
	"testing"
)

func TestDirectivesCoherenceBands(t *testing.T) {
	e := NewEngine(1)

	cases := []struct {
		intelligence float64
		fragment     string
	}{
		{95, "full coherence"},
		{60, "occasionally wander"},
		{30, "noticeably foggy"},
		{5, "fragmented"},
	}

	for _, c := range cases {
		cfg := DefaultConfig()
		cfg.IntelligenceLevel = c.intelligence
		block := e.Directives(cfg)
		if !strings.Contains(block, c.fragment) {
			t.Errorf("Intelligence %.0f: expected %q in directives, got %q", c.intelligence, c.fragment, block)
		}
	}
}

func TestDirectivesThresholds(t *testing.T) {
	e := NewEngine(1)

	cfg := DefaultConfig()
	cfg.Repetitiveness = 70
	cfg.ConfusionRate = 60
	cfg.ShortTermMemory = 10

	block := e.Directives(cfg)

	for _, fragment := range []string{"repeat phrases", "mix up common words", "quickly forget"} {
		if !strings.Contains(block, fragment) {
			t.Errorf("Expected %q in directives", fragment)
		}
	}
}

func TestDirectivesQuirkSampleProportional(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks = []string{QuirkWordRepetition, QuirkDistraction, QuirkWordConfusion, QuirkGrammarSimplification}
	cfg.QuirkFrequency = 50

	e := NewEngine(7)
	sampled := e.sampleQuirks(cfg.Clamp())

	// 50% of 4 quirks = 2.
	if len(sampled) != 2 {
		t.Errorf("Expected 2 sampled quirks, got %d", len(sampled))
	}

	// Seeded: same seed, same sample.
	again := NewEngine(7).sampleQuirks(cfg.Clamp())
	if strings.Join(sampled, ",") != strings.Join(again, ",") {
		t.Error("Same seed should give the same sample")
	}
}

func TestMutateRequiresHighFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks = []string{QuirkWordRepetition}
	cfg.QuirkFrequency = 50 // not strictly greater than 50

	e := NewEngine(1)
	text := "I was thinking about the same thing yesterday"

	if e.Mutate(text, cfg) != text {
		t.Error("Mutation must not trigger at frequency <= 50")
	}
}

func TestMutateWordRepetition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks = []string{QuirkWordRepetition}
	cfg.QuirkFrequency = 90

	e := NewEngine(1)
	mutated := e.Mutate("I was thinking about the same thing yesterday.", cfg)

	if !strings.Contains(mutated, "yesterday yesterday") {
		t.Errorf("Expected trailing echo, got %q", mutated)
	}
}

func TestMutateIdempotentOnExistingPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks = []string{QuirkWordRepetition}
	cfg.QuirkFrequency = 90

	e := NewEngine(1)
	already := "I was thinking about it yesterday yesterday."

	if got := e.Mutate(already, cfg); got != already {
		t.Errorf("Re-applying to already-mutated text should be a no-op, got %q", got)
	}
}

func TestHasTrailingEcho(t *testing.T) {
	cases := []struct {
		text   string
		echoed bool
	}{
		{"see you soon soon", true},
		{"see you soon soon.", true},
		{"see you Soon soon!", true},
		{"see you soon", false},
		{"soon", false},
		{"", false},
	}

	for _, c := range cases {
		if got := hasTrailingEcho(c.text); got != c.echoed {
			t.Errorf("hasTrailingEcho(%q) = %v, want %v", c.text, got, c.echoed)
		}
	}
}

func TestMutateSingleMutation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks = []string{QuirkWordConfusion}
	cfg.QuirkFrequency = 100

	e := NewEngine(3)
	mutated := e.Mutate("I am going to ship it and then I am going to sleep.", cfg)

	// Substitution applies, but only one quirk fires per reply: the reply
	// must not also carry echoes or distraction markers.
	if !strings.Contains(mutated, "gonna") {
		t.Errorf("Expected word confusion, got %q", mutated)
	}
	if strings.Contains(mutated, "distracted") || strings.Contains(mutated, "sleep sleep") {
		t.Errorf("More than one mutation applied: %q", mutated)
	}
}

func TestMutateGrammarSimplification(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks = []string{QuirkGrammarSimplification}
	cfg.QuirkFrequency = 100

	e := NewEngine(1)
	mutated := e.Mutate("The plan is solid. A rewrite can wait.", cfg)

	if strings.HasPrefix(mutated, "The ") {
		t.Errorf("Expected leading article dropped, got %q", mutated)
	}
}

func TestConfigClamp(t *testing.T) {
	cfg := Config{IntelligenceLevel: 150, ConfusionRate: -20, QuirkFrequency: 101}
	clamped := cfg.Clamp()

	if clamped.IntelligenceLevel != 100 || clamped.ConfusionRate != 0 || clamped.QuirkFrequency != 100 {
		t.Errorf("Clamp failed: %+v", clamped)
	}
}
