package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/hyperifyio/searchdash/internal/search"
)

const (
	// DefaultRateLimit is the minimum spacing between two requests to the
	// same provider.
	DefaultRateLimit = time.Second
	// DefaultConnectTimeout bounds a single provider request.
	DefaultConnectTimeout = 10 * time.Second
)

// Engine binds a Provider to its request pacing and per-request deadline.
// Engines are created once and reused for every query of a process.
type Engine struct {
	Provider       search.Provider
	RateLimit      time.Duration
	ConnectTimeout time.Duration

	mu   sync.Mutex
	last time.Time // start of the most recently reserved request slot
}

// NewEngine returns an Engine with the given pacing. Zero durations select
// the defaults; a negative rate limit disables pacing.
func NewEngine(p search.Provider, rateLimit, connectTimeout time.Duration) *Engine {
	if rateLimit == 0 {
		rateLimit = DefaultRateLimit
	}
	if rateLimit < 0 {
		rateLimit = 0
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &Engine{Provider: p, RateLimit: rateLimit, ConnectTimeout: connectTimeout}
}

func (e *Engine) Name() string { return e.Provider.Name() }

// LastRequest returns when the most recent request was (or will be) issued.
func (e *Engine) LastRequest() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// reserve claims the next request slot and records it as the last request.
// Claiming under the lock keeps concurrent callers from sharing a slot.
func (e *Engine) reserve(now time.Time) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	slot := now
	if !e.last.IsZero() {
		if next := e.last.Add(e.RateLimit); next.After(slot) {
			slot = next
		}
	}
	e.last = slot
	return slot
}

// wait blocks until the engine's next request slot or until ctx is done.
func (e *Engine) wait(ctx context.Context) error {
	d := time.Until(e.reserve(time.Now()))
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
