// Package gate bounds outbound model traffic: a FIFO throttler caps calls in
// flight system-wide, and a sliding-window rate limiter caps per-identity
// request rates.
package gate

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxConcurrent = 3
	defaultDispatchDelay = 100 * time.Millisecond
)

// Throttler admits at most maxConcurrent calls at any instant. Excess calls
// queue in arrival order and are dispatched with a small fixed spacing to
// avoid bursting the downstream API.
type Throttler struct {
	sem      *semaphore.Weighted
	delay    time.Duration
	inFlight atomic.Int64

	mu           sync.Mutex
	lastDispatch time.Time
}

// NewThrottler creates a throttler. Non-positive arguments select the
// defaults (3 concurrent, 100ms spacing).
func NewThrottler(maxConcurrent int, dispatchDelay time.Duration) (t *Throttler) {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if dispatchDelay <= 0 {
		dispatchDelay = defaultDispatchDelay
	}
	t = &Throttler{
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
		delay: dispatchDelay,
	}
	return t
}

// Do runs fn once a slot is free. Queued callers are served in arrival order;
// fn's error (or the context's, while still queued) is returned exactly once.
func (t *Throttler) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	err = t.sem.Acquire(ctx, 1)
	if err != nil {
		err = errors.Wrap(err, "throttler queue abandoned")
		return err
	}
	defer t.sem.Release(1)

	t.pace()

	t.inFlight.Inc()
	defer t.inFlight.Dec()

	err = fn(ctx)
	return err
}

// pace enforces the inter-dispatch spacing. Serialized on purpose: spacing is
// a property of the dispatch stream, not of individual calls.
func (t *Throttler) pace() {
	t.mu.Lock()
	defer t.mu.Unlock()

	wait := t.delay - time.Since(t.lastDispatch)
	if wait > 0 {
		time.Sleep(wait)
	}
	t.lastDispatch = time.Now()
}

// InFlight reports how many calls are currently executing.
func (t *Throttler) InFlight() (n int64) {
	n = t.inFlight.Load()
	return n
}
