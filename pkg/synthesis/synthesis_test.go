package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/soulforge-ai/soulforge/pkg/corpus"
	"github.com/soulforge-ai/soulforge/pkg/llm"
	"github.com/soulforge-ai/soulforge/pkg/profile"
	"github.com/soulforge-ai/soulforge/pkg/prompt"
)

const fullResponse = `1. SUMMARY
A relentlessly curious engineer who thinks in public and treats every thread as a chance to teach.

2. PERSONALITY TRAITS
Curiosity 8/10 - asks many questions
curious 7/10 - digs into unfamiliar codebases for fun
Optimism: 7/10 - frames setbacks as experiments

3. PRIMARY INTERESTS
Distributed systems
Developer tooling

4. COMMUNICATION STYLE
Formality: 35
Enthusiasm: 72
Technical Level: 80
Emoji Usage: 15
Verbosity: 45
Description: Short, punchy sentences with the occasional deep-dive thread.

5. WRITING PATTERNS
Capitalization: lowercase
Punctuation: ellipsis

6. CONTEXTUAL VARIATIONS
Casual: Fragmented, jokey, lowercase.

7. VOCABULARY
Common Terms: latency, throughput
Enthusiasm Markers: huge

8. EMOTIONAL INTELLIGENCE
Leadership Style: leads by shipping

9. TOPICS AND THEMES
Consensus algorithms

10. EMOTIONAL TONE
Upbeat with an undercurrent of impatience.

11. SOCIAL BEHAVIOR METRICS
Oversharing: 20
Reply Frequency: 85
Virality Seeking: 30
Humor Usage: 60
Controversy Tendency: 25
Emotional Volatility: 15
`

// incompleteResponse omits emotional tone and social behavior metrics so the
// validation controller has something to chase.
const incompleteResponse = `1. SUMMARY
A relentlessly curious engineer who thinks in public and treats every thread as a chance to teach.

2. PERSONALITY TRAITS
Curiosity 8/10 - asks many questions

3. PRIMARY INTERESTS
Distributed systems

4. COMMUNICATION STYLE
Formality: 35
Enthusiasm: 72
Description: Short and punchy with deep-dive threads when the topic earns it.

7. VOCABULARY
Common Terms: latency, throughput

9. TOPICS AND THEMES
Consensus algorithms
`

const patchResponse = `10. EMOTIONAL TONE
Upbeat with an undercurrent of impatience whenever a deploy drags on.

11. SOCIAL BEHAVIOR METRICS
Oversharing: 20
Reply Frequency: 85
Virality Seeking: 30
Humor Usage: 60
Controversy Tendency: 25
Emotional Volatility: 15
`

// stubInvoker returns scripted results in order, then repeats the last. It
// records every request so tests can inspect prompts.
type stubInvoker struct {
	results []stubResult
	reqs    []llm.InvokeRequest
}

type stubResult struct {
	text string
	err  error
}

func (s *stubInvoker) Invoke(ctx context.Context, req llm.InvokeRequest) (text string, err error) {
	s.reqs = append(s.reqs, req)
	idx := len(s.reqs) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	text = s.results[idx].text
	err = s.results[idx].err
	return text, err
}

func testPosts() (posts []corpus.Post) {
	posts = []corpus.Post{
		{ID: "1", Text: "latency budgets matter more than raw throughput numbers ever will"},
		{ID: "2", Text: "spent the weekend reading raft papers and sketching consensus diagrams"},
		{ID: "3", Text: "shipping small improvements daily beats one giant quarterly release"},
		{ID: "4", Text: "developer tooling is the highest leverage work most teams ignore"},
	}
	return posts
}

func TestMergeTraitsGroupsSimilarNames(t *testing.T) {
	merged := MergeTraits([]profile.Trait{
		{Name: "Curiosity", Score: 8, Explanation: "asks many questions"},
		{Name: "curious", Score: 7, Explanation: "digs into unfamiliar codebases"},
		{Name: "Optimism", Score: 7, Explanation: "frames setbacks as experiments"},
	})

	if len(merged) != 2 {
		t.Fatalf("Expected 2 merged traits, got %d: %+v", len(merged), merged)
	}

	top := merged[0]
	if top.Name != "Curiosity" || top.Score != 8 {
		t.Errorf("Expected canonical Curiosity 8, got %s %v", top.Name, top.Score)
	}

	if len(top.RelatedTraitNames) != 1 || top.RelatedTraitNames[0] != "curious" {
		t.Errorf("Expected related name [curious], got %v", top.RelatedTraitNames)
	}

	if !strings.Contains(top.Details, "digs into unfamiliar codebases") {
		t.Errorf("Expected the losing explanation in details, got %q", top.Details)
	}
}

func TestMergeTraitsOrderIndependent(t *testing.T) {
	traits := []profile.Trait{
		{Name: "Curiosity", Score: 8, Explanation: "asks many questions"},
		{Name: "curious", Score: 7, Explanation: "digs in"},
		{Name: "Directness", Score: 6, Explanation: "says what they think"},
	}
	reversed := []profile.Trait{traits[2], traits[1], traits[0]}

	a := MergeTraits(traits)
	b := MergeTraits(reversed)

	if len(a) != len(b) {
		t.Fatalf("Order changed group count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Score != b[i].Score {
			t.Errorf("Order changed trait %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	first := NewAggregator()
	first.Add(profile.Profile{
		Summary:   "A curious engineer.",
		Traits:    []profile.Trait{{Name: "Curiosity", Score: 8, Explanation: "asks"}},
		Interests: []string{"Distributed systems"},
	})
	first.Add(profile.Profile{
		Traits:    []profile.Trait{{Name: "curious", Score: 7, Explanation: "digs"}},
		Interests: []string{"systems"},
	})
	once := first.Merged()

	second := NewAggregator()
	second.Add(once)
	second.Add(once)
	twice := second.Merged()

	if len(twice.Traits) != len(once.Traits) {
		t.Fatalf("Re-merging grew traits: %d vs %d", len(twice.Traits), len(once.Traits))
	}
	for i := range once.Traits {
		if twice.Traits[i].Name != once.Traits[i].Name || twice.Traits[i].Score != once.Traits[i].Score {
			t.Errorf("Trait %d drifted: %+v vs %+v", i, once.Traits[i], twice.Traits[i])
		}
	}

	if len(twice.Interests) != len(once.Interests) {
		t.Errorf("Re-merging changed interests: %v vs %v", once.Interests, twice.Interests)
	}
}

func TestConsolidateKeepsLongest(t *testing.T) {
	got := Consolidate([]string{"AI", "AI research", "cooking", "Cooking shows"})

	want := map[string]bool{"AI research": true, "Cooking shows": true}
	if len(got) != 2 {
		t.Fatalf("Expected 2 representatives, got %v", got)
	}
	for _, item := range got {
		if !want[item] {
			t.Errorf("Unexpected representative %q in %v", item, got)
		}
	}
}

func TestValidateDefaultProfile(t *testing.T) {
	missing := Validate(profile.NewDefault())

	if len(missing) != len(allGroups) {
		t.Errorf("Default profile should miss every group, got %v", missing)
	}
}

func TestValidateCompleteProfile(t *testing.T) {
	p := profile.Profile{
		Summary:         "A curious engineer who teaches in public.",
		Traits:          []profile.Trait{{Name: "Curiosity", Score: 8}},
		Interests:       []string{"Distributed systems"},
		EmotionalTone:   "Upbeat and impatient.",
		TopicsAndThemes: []string{"Consensus algorithms"},
	}
	p.CommunicationStyle.Formality = 35
	p.Vocabulary.CommonTerms = []profile.Term{{Term: "latency"}}
	p.SocialBehaviorMetrics.ReplyFrequency = 85

	if missing := Validate(p); len(missing) != 0 {
		t.Errorf("Expected no missing groups, got %v", missing)
	}
}

func TestSynthesizeCompleteFirstPass(t *testing.T) {
	stub := &stubInvoker{results: []stubResult{{text: fullResponse}}}
	c := NewController(stub, nil, nil, nil, corpus.Options{BatchSize: 2})

	tuning := profile.DefaultTuning()
	tuning.CustomInterests = []string{"Chess"}

	p, err := c.Synthesize(context.Background(), prompt.ProfileInfo{Handle: "ka"}, testPosts(), tuning)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(stub.reqs) != 2 {
		t.Errorf("Expected one call per batch, got %d", len(stub.reqs))
	}

	if missing := Validate(p); len(missing) != 0 {
		t.Errorf("Expected a complete profile, missing %v", missing)
	}

	if p.Traits[0].Name != "Curiosity" || p.Traits[0].Score != 8 {
		t.Errorf("Expected Curiosity 8 on top, got %+v", p.Traits[0])
	}

	found := false
	for _, interest := range p.Interests {
		if interest == "Chess" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected tuning's custom interest, got %v", p.Interests)
	}
}

func TestSynthesizeRetriesMissingGroups(t *testing.T) {
	stub := &stubInvoker{results: []stubResult{
		{text: incompleteResponse},
		{text: patchResponse},
	}}
	c := NewController(stub, nil, nil, nil, corpus.Options{BatchSize: 10})

	p, err := c.Synthesize(context.Background(), prompt.ProfileInfo{Handle: "ka"}, testPosts(), profile.DefaultTuning())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(stub.reqs) < 2 {
		t.Fatalf("Expected targeted re-invocations, got %d calls", len(stub.reqs))
	}

	retryPrompt := stub.reqs[1].User
	if !strings.Contains(retryPrompt, "EMOTIONAL TONE") {
		t.Errorf("Retry prompt should focus the missing group, got:\n%s", retryPrompt)
	}

	if p.EmotionalTone == profile.DefaultEmotionalTone {
		t.Error("Emotional tone should have been filled by the retry")
	}

	if p.SocialBehaviorMetrics.Missing() {
		t.Error("Social metrics should have been filled by the retry")
	}
}

func TestSynthesizeDefaultsAfterBudget(t *testing.T) {
	stub := &stubInvoker{results: []stubResult{{text: incompleteResponse}}}
	c := NewController(stub, nil, nil, nil, corpus.Options{BatchSize: 10})

	p, err := c.Synthesize(context.Background(), prompt.ProfileInfo{Handle: "ka"}, testPosts(), profile.DefaultTuning())
	if err != nil {
		t.Fatalf("Budget exhaustion should fall back to defaults, got error: %v", err)
	}

	if p.EmotionalTone != profile.DefaultEmotionalTone {
		t.Errorf("Expected the default tone after exhaustion, got %q", p.EmotionalTone)
	}

	if p.Summary == profile.DefaultSummary {
		t.Error("Groups that did parse should survive the fallback")
	}
}

func TestSynthesizeGroupBudgetBinds(t *testing.T) {
	stub := &stubInvoker{results: []stubResult{{text: incompleteResponse}}}
	c := NewController(stub, nil, nil, nil, corpus.Options{BatchSize: 10})

	_, err := c.Synthesize(context.Background(), prompt.ProfileInfo{Handle: "ka"}, testPosts(), profile.DefaultTuning())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// One batch call, then each of the two stubbornly missing groups gets
	// its full budget of targeted retries before defaults stand.
	want := 1 + 2*groupBudget
	if len(stub.reqs) != want {
		t.Fatalf("Expected %d calls, got %d", want, len(stub.reqs))
	}

	toneRetries := 0
	for _, req := range stub.reqs[1:] {
		if strings.Contains(req.User, "EMOTIONAL TONE") {
			toneRetries++
		}
	}
	if toneRetries != groupBudget {
		t.Errorf("Expected %d emotional-tone retries, got %d", groupBudget, toneRetries)
	}
}

func TestSynthesizeGroupErrorOnCallFailure(t *testing.T) {
	exhausted := &llm.ExhaustedError{Class: llm.ClassPersonality, Attempts: 5}
	stub := &stubInvoker{results: []stubResult{
		{text: incompleteResponse},
		{err: exhausted},
	}}
	c := NewController(stub, nil, nil, nil, corpus.Options{BatchSize: 10})

	_, err := c.Synthesize(context.Background(), prompt.ProfileInfo{Handle: "ka"}, testPosts(), profile.DefaultTuning())
	if err == nil {
		t.Fatal("Expected a group error")
	}

	var groupErr *GroupError
	if !errors.As(err, &groupErr) {
		t.Fatalf("Expected *GroupError, got %T: %v", err, err)
	}

	if !errors.Is(err, exhausted) {
		t.Error("Group error should wrap the invocation failure")
	}
}

func TestSynthesizeEmptyCorpusReturnsDefault(t *testing.T) {
	stub := &stubInvoker{results: []stubResult{{text: fullResponse}}}
	c := NewController(stub, nil, nil, nil, corpus.Options{})

	p, err := c.Synthesize(context.Background(), prompt.ProfileInfo{Handle: "ka"}, nil, profile.DefaultTuning())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(stub.reqs) != 0 {
		t.Errorf("No posts should mean no model calls, got %d", len(stub.reqs))
	}

	if p.Summary != profile.DefaultSummary {
		t.Errorf("Expected the default profile, got summary %q", p.Summary)
	}
}
