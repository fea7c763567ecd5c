package model

import (
	"sync"
	"time"
)

// RateGovernor enforces a minimum spacing between outbound calls to the
// generative and TTS backends. It is shared by every caller in the
// process; each call site invokes Gate before dispatching.
//
// The lock is held across the read-check-sleep-update sequence, not
// across the outbound call itself. lastCall is stamped before the call is
// dispatched so that a concurrent caller cannot race past the throttle
// while a slow request is in flight.
type RateGovernor struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time

	now   func() time.Time
	sleep func(d time.Duration)
}

func NewRateGovernor(interval time.Duration) *RateGovernor {
	return &RateGovernor{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Gate blocks until at least the configured interval has passed since the
// previous gated call, stamps the call time, and returns how long it
// waited.
func (g *RateGovernor) Gate() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	var waited time.Duration
	if !g.lastCall.IsZero() {
		elapsed := g.now().Sub(g.lastCall)
		if elapsed < g.interval {
			waited = g.interval - elapsed
			g.sleep(waited)
		}
	}
	g.lastCall = g.now()
	return waited
}

// SinceLastCall reports the elapsed time since the previous gated call,
// or a negative duration if nothing has been dispatched yet. The status
// endpoint exposes it.
func (g *RateGovernor) SinceLastCall() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastCall.IsZero() {
		return -1
	}
	return g.now().Sub(g.lastCall)
}
