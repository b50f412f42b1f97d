package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CallClass selects the timeout and retry budget for an invocation.
type CallClass string

// Call classes. Personality synthesis tolerates long completions; chat turns
// must come back fast.
const (
	ClassPersonality CallClass = "personality"
	ClassChat        CallClass = "chat"
	ClassGeneric     CallClass = "generic"
)

type classBudget struct {
	timeout     time.Duration
	maxAttempts int
}

func budgetFor(class CallClass) (b classBudget) {
	switch class {
	case ClassPersonality:
		b = classBudget{timeout: 90 * time.Second, maxAttempts: 5}
	case ClassChat:
		b = classBudget{timeout: 30 * time.Second, maxAttempts: 3}
	default:
		b = classBudget{timeout: 45 * time.Second, maxAttempts: 3}
	}
	return b
}

// Completer is the single call primitive the invoker wraps.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (text string, err error)
}

// InvokeRequest describes one logical invocation.
type InvokeRequest struct {
	Class  CallClass
	System string
	User   string
	Opts   Options

	// RegenKey, when set, scores completions against previously accepted
	// responses under the same key.
	RegenKey string
}

// Invoker wraps a model call with class-aware timeouts, exponential backoff
// with jitter, a one-shot cheaper-model fallback on unavailability, and
// quality-floor enforcement.
type Invoker struct {
	completer     Completer
	fallbackModel string
	regen         *RegenerationContext
	logger        *zap.Logger

	baseDelay      time.Duration
	timeoutPenalty time.Duration

	// sleep is injectable so tests don't wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInvoker creates an invoker around a completer. A nil regen context gets
// a private one; a nil logger is replaced with a nop.
func NewInvoker(completer Completer, regen *RegenerationContext, logger *zap.Logger) (inv *Invoker) {
	if regen == nil {
		regen = NewRegenerationContext()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	inv = &Invoker{
		completer:      completer,
		fallbackModel:  ClaudeFallbackModel,
		regen:          regen,
		logger:         logger,
		baseDelay:      time.Second,
		timeoutPenalty: 2 * time.Second,
		sleep:          sleepCtx,
	}
	return inv
}

// SetFallbackModel overrides the model used for the one-shot unavailability
// fallback. An empty model disables the fallback.
func (inv *Invoker) SetFallbackModel(model string) {
	inv.fallbackModel = model
}

// Regen exposes the regeneration context so callers can record accepted
// responses.
func (inv *Invoker) Regen() (rc *RegenerationContext) {
	rc = inv.regen
	return rc
}

// Invoke runs one logical call through the retry policy. After the budget is
// exhausted it returns an *ExhaustedError whose Last error distinguishes
// timeout vs unavailability vs generic failure.
func (inv *Invoker) Invoke(ctx context.Context, req InvokeRequest) (text string, err error) {
	budget := budgetFor(req.Class)

	var previous []string
	if req.RegenKey != "" {
		previous = inv.regen.Snapshot(req.RegenKey).PreviousResponses
	}

	fallbackTried := false

	ceiling := maxAcceptableLen
	if req.Class == ClassPersonality {
		ceiling = 0
	}

	var lastErr error
	for attempt := 0; attempt < budget.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := inv.backoffDelay(attempt, lastErr)
			if sleepErr := inv.sleep(ctx, delay); sleepErr != nil {
				lastErr = errors.Wrap(ErrTimeout, sleepErr.Error())
				break
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, budget.timeout)
		text, lastErr = inv.completer.Complete(callCtx, req.System, req.User, req.Opts)
		cancel()

		if lastErr == nil {
			score := scoreWithCeiling(text, previous, ceiling)
			if score >= QualityFloor {
				return text, nil
			}
			lastErr = errors.Wrapf(ErrLowQuality, "score %.2f", score)
			inv.logger.Debug("completion rejected below quality floor",
				zap.String("class", string(req.Class)),
				zap.Int("attempt", attempt+1),
				zap.Float64("score", score))
			continue
		}

		inv.logger.Debug("model call failed",
			zap.String("class", string(req.Class)),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))

		// Exactly one fallback call against the cheaper model when the
		// primary reports itself unavailable. It is an extra call rather than
		// a retried option: ordinary retries stay on the primary model, and
		// the fallback still fires when the final attempt is the unavailable
		// one.
		if errors.Is(lastErr, ErrUnavailable) && !fallbackTried && inv.fallbackModel != "" {
			fallbackTried = true
			inv.logger.Info("falling back to secondary model",
				zap.String("model", inv.fallbackModel))
			fbText, fbErr := inv.fallbackOnce(ctx, req, previous, ceiling, budget.timeout)
			if fbErr == nil {
				return fbText, nil
			}
			lastErr = fbErr
		}
	}

	err = &ExhaustedError{
		Class:    req.Class,
		Attempts: budget.maxAttempts,
		Last:     lastErr,
	}
	text = ""
	return text, err
}

// fallbackOnce runs the single cheaper-model call allowed per invocation. It
// is held to the same class timeout and quality floor as a primary attempt.
func (inv *Invoker) fallbackOnce(ctx context.Context, req InvokeRequest, previous []string, ceiling int, timeout time.Duration) (text string, err error) {
	opts := req.Opts
	opts.Model = inv.fallbackModel

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	text, err = inv.completer.Complete(callCtx, req.System, req.User, opts)
	cancel()
	if err != nil {
		text = ""
		return text, err
	}

	score := scoreWithCeiling(text, previous, ceiling)
	if score < QualityFloor {
		err = errors.Wrapf(ErrLowQuality, "fallback score %.2f", score)
		text = ""
		return text, err
	}
	return text, nil
}

// backoffDelay computes base * 2^attempt plus jitter, with a fixed penalty
// added after timeout-classified failures.
func (inv *Invoker) backoffDelay(attempt int, lastErr error) (delay time.Duration) {
	delay = inv.baseDelay * (1 << uint(attempt-1))
	delay += time.Duration(rand.Int63n(int64(inv.baseDelay)/2 + 1))
	if errors.Is(lastErr, ErrTimeout) {
		delay += inv.timeoutPenalty
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) (err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		err = ctx.Err()
	}
	return err
}
