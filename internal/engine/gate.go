package engine

import (
	"sync"
	"time"
)

// Gate debounces raw candidates into final signals. It holds at most one
// pending candidate and a single cancellable hold timer; every Submit
// replaces the pending value and restarts the timer (last write wins), so
// a late correction can override a tentative classification before it
// becomes final.
//
// A generation counter guards the timer callback: a timer that has been
// superseded or cancelled can never fire, even if it was already running
// when the replacement happened.
type Gate struct {
	mu      sync.Mutex
	hold    time.Duration
	pending *RawCandidate
	timer   *time.Timer
	gen     uint64
	onFinal func(FinalSignal)
}

// NewGate creates a Gate with the given hold window in milliseconds.
// onFinal is invoked once per confirmed candidate, outside the gate's lock.
func NewGate(holdMs int64, onFinal func(FinalSignal)) *Gate {
	return &Gate{
		hold:    time.Duration(holdMs) * time.Millisecond,
		onFinal: onFinal,
	}
}

// Submit replaces any pending candidate with c and restarts the hold timer.
func (g *Gate) Submit(c RawCandidate) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	gen := g.gen
	g.pending = &c

	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.hold, func() {
		g.finalize(gen)
	})
}

// Cancel clears any pending candidate and timer without emitting.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	g.pending = nil
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// Pending reports whether a candidate is waiting out the hold window.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// finalize emits the pending candidate as a final signal, unless the timer
// that scheduled it has been superseded.
func (g *Gate) finalize(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || g.pending == nil {
		g.mu.Unlock()
		return
	}

	signal := FinalSignal{
		Value:       g.pending.Value,
		Gesture:     g.pending.Gesture,
		TimestampMs: g.pending.TimestampMs,
	}
	g.pending = nil
	g.timer = nil
	onFinal := g.onFinal
	g.mu.Unlock()

	if onFinal != nil {
		onFinal(signal)
	}
}
