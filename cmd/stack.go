package cmd

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/soulforge-ai/soulforge/pkg/config"
	"github.com/soulforge-ai/soulforge/pkg/gate"
	"github.com/soulforge-ai/soulforge/pkg/llm"
	"github.com/soulforge-ai/soulforge/pkg/store"
)

// stack bundles the wired runtime pieces a command needs.
type stack struct {
	cfg       config.Config
	limiter   *gate.RateLimiter
	throttler *gate.Throttler
	store     store.Store
	logger    *zap.Logger
}

// buildStack loads config and wires the gates and the profile store.
func buildStack() (s *stack, err error) {
	cfg, err := config.Load(getConfigFile())
	if err != nil {
		return s, err
	}

	var profileStore store.Store
	if cfg.Redis.Addr != "" {
		profileStore = store.NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		profileStore = store.NewMemory()
	}

	s = &stack{
		cfg:       cfg,
		limiter:   gate.NewRateLimiter(cfg.Limits.MaxRequests, time.Duration(cfg.Limits.WindowSeconds)*time.Second),
		throttler: gate.NewThrottler(cfg.Limits.MaxConcurrent, time.Duration(cfg.Limits.DispatchDelayMS)*time.Millisecond),
		store:     profileStore,
		logger:    newLogger(),
	}
	return s, err
}

// invoker builds a retry-wrapped model client for the given primary model.
func (s *stack) invoker(model string) (inv *llm.Invoker) {
	client := llm.NewClient(s.cfg.AnthropicAPIKey, model)
	inv = llm.NewInvoker(client, nil, s.logger)
	inv.SetFallbackModel(s.cfg.GetFallbackModel())
	return inv
}
