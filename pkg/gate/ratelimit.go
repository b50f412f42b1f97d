package gate

import (
	"sync"
	"time"
)

const (
	defaultWindow      = 60 * time.Second
	defaultMaxRequests = 30
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// RateLimiter is a per-identity sliding-window counter. Identities are
// independent. State grows with the identity set; call Sweep periodically to
// drop identities whose window has fully expired.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewRateLimiter creates a limiter. Non-positive arguments select the
// defaults (30 requests per 60s).
func NewRateLimiter(maxRequests int, window time.Duration) (l *RateLimiter) {
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}
	if window <= 0 {
		window = defaultWindow
	}
	l = &RateLimiter{
		window: window,
		max:    maxRequests,
		hits:   map[string][]time.Time{},
		now:    time.Now,
	}
	return l
}

// CheckLimit records a request for identity and reports whether it is
// admitted, how many requests remain in the window, and when the window
// resets.
func (l *RateLimiter) CheckLimit(identity string) (d Decision) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := prune(l.hits[identity], now.Add(-l.window))

	if len(recent) >= l.max {
		l.hits[identity] = recent
		d = Decision{
			Allowed:   false,
			Remaining: 0,
			Reset:     recent[0].Add(l.window),
		}
		return d
	}

	recent = append(recent, now)
	l.hits[identity] = recent

	d = Decision{
		Allowed:   true,
		Remaining: l.max - len(recent),
		Reset:     recent[0].Add(l.window),
	}
	return d
}

// Sweep drops identities with no requests inside the current window. This is
// cooperative cleanup: the limiter never sweeps on its own.
func (l *RateLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for identity, stamps := range l.hits {
		if len(prune(stamps, cutoff)) == 0 {
			delete(l.hits, identity)
		}
	}
}

// prune returns timestamps strictly after cutoff, preserving order.
func prune(stamps []time.Time, cutoff time.Time) (recent []time.Time) {
	for _, s := range stamps {
		if s.After(cutoff) {
			recent = append(recent, s)
		}
	}
	return recent
}
