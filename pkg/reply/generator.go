package reply

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soulforge-ai/soulforge/pkg/gate"
	"github.com/soulforge-ai/soulforge/pkg/llm"
	"github.com/soulforge-ai/soulforge/pkg/profile"
	"github.com/soulforge-ai/soulforge/pkg/prompt"
	"github.com/soulforge-ai/soulforge/pkg/quirk"
)

const (
	maxStyleRetries = 3

	// replyDeadline bounds one whole reply turn, style retries and their
	// per-call timeouts included.
	replyDeadline = 2 * time.Minute

	baseTemperature = 0.5
	minTemperature  = 0.3
	maxTemperature  = 0.9
)

// Invoker is the slice of the call layer the generator needs: the gated call
// itself plus the regeneration context that tracks attempts and accepted
// responses per conversation.
type Invoker interface {
	Invoke(ctx context.Context, req llm.InvokeRequest) (text string, err error)
	Regen() (rc *llm.RegenerationContext)
}

// Request describes one chat turn to answer.
type Request struct {
	// ConversationID keys regeneration state; replies in the same
	// conversation avoid repeating earlier accepted responses.
	ConversationID string
	Profile        profile.Profile
	Tuning         profile.Tuning
	Consciousness  quirk.Config
	History        []prompt.Turn
	Message        string
}

// Generator produces in-character replies. Style violations trigger
// regeneration with a rotated variation nudge; an accepted reply is recorded
// and then run through the quirk mutation pass.
type Generator struct {
	invoker   Invoker
	engine    *quirk.Engine
	limiter   *gate.RateLimiter
	throttler *gate.Throttler
	logger    *zap.Logger
}

// NewGenerator wires a generator. Limiter and throttler may be nil; a nil
// logger becomes a nop.
func NewGenerator(invoker Invoker, engine *quirk.Engine, limiter *gate.RateLimiter, throttler *gate.Throttler, logger *zap.Logger) (g *Generator) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g = &Generator{
		invoker:   invoker,
		engine:    engine,
		limiter:   limiter,
		throttler: throttler,
		logger:    logger,
	}
	return g
}

// Temperature derives the sampling temperature from the tuning: enthusiasm
// warms it up, formality cools it down, clamped to [0.3, 0.9].
func Temperature(t profile.Tuning) (temp float64) {
	temp = baseTemperature + t.Enthusiasm/100*0.3 - t.Formality/100*0.2
	temp = profile.Clamp(temp, minTemperature, maxTemperature)
	return temp
}

// Reply answers one chat turn in the profile's voice. The whole turn runs
// under a bounded wall-clock deadline. It retries style violations up to 3
// times with rotated variation nudges, records the accepted response for
// dedup within the conversation, and applies at most one quirk mutation to
// the accepted text.
func (g *Generator) Reply(ctx context.Context, req Request) (text string, err error) {
	ctx, cancel := context.WithTimeout(ctx, replyDeadline)
	defer cancel()

	if g.limiter != nil {
		d := g.limiter.CheckLimit(req.ConversationID)
		if !d.Allowed {
			err = errors.Errorf("rate limit exceeded for conversation %s, retry after %s",
				req.ConversationID, d.Reset.Format("15:04:05"))
			return text, err
		}
	}

	cfg := req.Consciousness.Clamp()
	regen := g.invoker.Regen()

	opts := llm.Options{
		Temperature: Temperature(req.Tuning),
		MaxTokens:   1024,
	}

	var lastViolation Violation
	for attempt := 0; attempt < maxStyleRetries; attempt++ {
		variation := regen.Snapshot(req.ConversationID).StyleVariation

		system, user := prompt.BuildReply(prompt.ReplyRequest{
			Profile:                 req.Profile,
			Tuning:                  req.Tuning,
			ConsciousnessDirectives: g.engine.Directives(cfg),
			History:                 req.History,
			Message:                 req.Message,
			StyleVariation:          variation,
		})

		candidate, callErr := g.complete(ctx, llm.InvokeRequest{
			Class:    llm.ClassChat,
			System:   system,
			User:     user,
			Opts:     opts,
			RegenKey: req.ConversationID,
		})
		if callErr != nil {
			err = errors.Wrap(callErr, "reply generation failed")
			return text, err
		}

		lastViolation = ValidateStyle(candidate, req.Tuning)
		if lastViolation != ViolationNone {
			regen.RecordAttempt(req.ConversationID)
			g.logger.Debug("reply rejected by style validator",
				zap.String("conversation", req.ConversationID),
				zap.Int("attempt", attempt+1),
				zap.String("violation", string(lastViolation)))
			continue
		}

		regen.RecordResponse(req.ConversationID, candidate)
		text = g.engine.Mutate(candidate, cfg)
		return text, nil
	}

	err = errors.Errorf("no acceptable reply after %d attempts, last violation: %s",
		maxStyleRetries, lastViolation)
	return text, err
}

func (g *Generator) complete(ctx context.Context, req llm.InvokeRequest) (text string, err error) {
	call := func(callCtx context.Context) (callErr error) {
		text, callErr = g.invoker.Invoke(callCtx, req)
		return callErr
	}

	if g.throttler != nil {
		err = g.throttler.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	return text, err
}
