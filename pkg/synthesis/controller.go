package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soulforge-ai/soulforge/pkg/corpus"
	"github.com/soulforge-ai/soulforge/pkg/gate"
	"github.com/soulforge-ai/soulforge/pkg/llm"
	"github.com/soulforge-ai/soulforge/pkg/parser"
	"github.com/soulforge-ai/soulforge/pkg/profile"
	"github.com/soulforge-ai/soulforge/pkg/prompt"
)

const (
	// groupBudget caps targeted re-invocations per field group.
	groupBudget = 5
	// globalBudget caps validation rounds over the whole profile.
	globalBudget = 3
)

// GroupError reports that a targeted re-invocation for one field group failed
// at the call layer. It wraps the underlying invocation error.
type GroupError struct {
	Group    FieldGroup
	Attempts int
	Err      error
}

func (e *GroupError) Error() (msg string) {
	msg = fmt.Sprintf("field group %s failed after %d attempts: %v", e.Group, e.Attempts, e.Err)
	return msg
}

func (e *GroupError) Unwrap() (err error) {
	err = e.Err
	return err
}

// IncompleteError reports that the validation budget ran out with field
// groups still missing. Synthesize recovers from it by falling back to safe
// defaults, so callers only see it through logs.
type IncompleteError struct {
	Missing []FieldGroup
}

func (e *IncompleteError) Error() (msg string) {
	names := make([]string, 0, len(e.Missing))
	for _, g := range e.Missing {
		names = append(names, string(g))
	}
	msg = fmt.Sprintf("profile incomplete after validation budget: %s", strings.Join(names, ", "))
	return msg
}

// retryState tracks the validation controller's budgets explicitly: one
// global round counter plus a per-group counter.
type retryState struct {
	global int
	groups map[FieldGroup]int
}

func newRetryState() (s *retryState) {
	s = &retryState{groups: map[FieldGroup]int{}}
	return s
}

func (s *retryState) globalExhausted() (exhausted bool) {
	exhausted = s.global >= globalBudget
	return exhausted
}

func (s *retryState) groupExhausted(g FieldGroup) (exhausted bool) {
	exhausted = s.groups[g] >= groupBudget
	return exhausted
}

// Invoker is the slice of the call layer the controller needs.
type Invoker interface {
	Invoke(ctx context.Context, req llm.InvokeRequest) (text string, err error)
}

// Controller drives profile synthesis end to end: preprocessing, gated
// batch-by-batch aggregation, merging, and validation-driven re-invocation.
type Controller struct {
	invoker   Invoker
	limiter   *gate.RateLimiter
	throttler *gate.Throttler
	logger    *zap.Logger
	opts      corpus.Options
}

// NewController wires a controller. Limiter and throttler may be nil when no
// gating is wanted (tests, offline replays); a nil logger becomes a nop.
func NewController(invoker Invoker, limiter *gate.RateLimiter, throttler *gate.Throttler, logger *zap.Logger, opts corpus.Options) (c *Controller) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c = &Controller{
		invoker:   invoker,
		limiter:   limiter,
		throttler: throttler,
		logger:    logger,
		opts:      opts,
	}
	return c
}

// Synthesize builds a personality profile for one account from its post
// corpus. Failed batches are skipped; validation re-invokes the model per
// missing field group until the budgets run out, at which point the
// remaining groups keep their safe defaults. Call-layer failures during
// targeted re-invocation surface as *GroupError.
func (c *Controller) Synthesize(ctx context.Context, info prompt.ProfileInfo, posts []corpus.Post, tuning profile.Tuning) (p profile.Profile, err error) {
	batches := corpus.Preprocess(posts, c.opts)
	if len(batches) == 0 {
		c.logger.Warn("no usable posts, returning default profile",
			zap.String("handle", info.Handle))
		p = tuning.Apply(profile.NewDefault())
		return p, nil
	}

	kept := make([]corpus.Post, 0, len(posts))
	for _, batch := range batches {
		kept = append(kept, batch...)
	}

	agg := NewAggregator()
	for i, batch := range batches {
		var soFar *profile.Profile
		if agg.Parts() > 0 {
			merged := agg.Merged()
			soFar = &merged
		}

		text, callErr := c.aggregate(ctx, info, corpus.BatchText(batch), soFar, nil)
		if callErr != nil {
			if ctx.Err() != nil {
				err = errors.Wrap(callErr, "synthesis canceled")
				return p, err
			}
			c.logger.Warn("batch aggregation failed, skipping batch",
				zap.String("handle", info.Handle),
				zap.Int("batch", i+1),
				zap.Error(callErr))
			continue
		}
		agg.Add(parser.Parse(text))
	}

	merged := c.withCorpusVocabulary(agg.Merged(), kept)

	state := newRetryState()
	for {
		missing := Validate(merged)
		if len(missing) == 0 {
			break
		}

		if state.globalExhausted() {
			incomplete := &IncompleteError{Missing: missing}
			c.logger.Warn("accepting profile with defaulted groups",
				zap.String("handle", info.Handle),
				zap.Error(incomplete))
			break
		}
		state.global++

		retried := false
		for _, group := range missing {
			// A group that a re-invocation still left empty is retried right
			// away, until it fills or its own budget runs out.
			for !groupComplete(merged, group) && !state.groupExhausted(group) {
				state.groups[group]++
				retried = true

				current := merged
				text, callErr := c.aggregate(ctx, info, corpus.BatchText(batches[0]), &current, []string{focusFor[group]})
				if callErr != nil {
					if ctx.Err() != nil {
						err = &GroupError{Group: group, Attempts: state.groups[group], Err: callErr}
						return p, err
					}
					var exhausted *llm.ExhaustedError
					if errors.As(callErr, &exhausted) {
						err = &GroupError{Group: group, Attempts: state.groups[group], Err: callErr}
						return p, err
					}
					c.logger.Warn("group re-invocation failed",
						zap.String("group", string(group)),
						zap.Error(callErr))
					break
				}
				agg.Add(parser.Parse(text))
				merged = c.withCorpusVocabulary(agg.Merged(), kept)
			}
		}

		if !retried {
			// Every missing group ran out of budget; their safe defaults
			// stand.
			incomplete := &IncompleteError{Missing: missing}
			c.logger.Warn("accepting profile with defaulted groups",
				zap.String("handle", info.Handle),
				zap.Error(incomplete))
			break
		}
	}

	p = tuning.Apply(merged)
	return p, nil
}

// aggregate runs one personality-class model call through the rate limiter
// and throttler.
func (c *Controller) aggregate(ctx context.Context, info prompt.ProfileInfo, batchText string, soFar *profile.Profile, focus []string) (text string, err error) {
	if c.limiter != nil {
		d := c.limiter.CheckLimit(info.Handle)
		if !d.Allowed {
			err = errors.Errorf("rate limit exceeded for %s, retry after %s", info.Handle, d.Reset.Format("15:04:05"))
			return text, err
		}
	}

	req := llm.InvokeRequest{
		Class:  llm.ClassPersonality,
		System: prompt.AggregationSystem,
		User: prompt.BuildAggregation(prompt.AggregationRequest{
			Info:      info,
			BatchText: batchText,
			SoFar:     soFar,
			Focus:     focus,
		}),
		Opts: llm.Options{Temperature: 0.7, MaxTokens: 4096},
	}

	call := func(callCtx context.Context) (callErr error) {
		text, callErr = c.invoker.Invoke(callCtx, req)
		return callErr
	}

	if c.throttler != nil {
		err = c.throttler.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	return text, err
}

// withCorpusVocabulary folds frequency-counted corpus vocabulary into the
// model-derived vocabulary. Corpus counts win on conflicts since they carry
// real frequencies.
func (c *Controller) withCorpusVocabulary(p profile.Profile, kept []corpus.Post) (enriched profile.Profile) {
	enriched = p
	stats := corpus.VocabularyStats(kept)
	enriched.Vocabulary.CommonTerms = unionTerms(append(stats.CommonTerms, p.Vocabulary.CommonTerms...))
	enriched.Vocabulary.NGrams = stats.NGrams
	return enriched
}
