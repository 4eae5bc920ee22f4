package engine

import "time"

// arm starts the countdown for the player now holding the clock. Re-arming an
// existing ticker resets its period, so the receiving player always gets a
// whole first second.
func (e *Engine) arm() {
	if e.ticker == nil {
		e.ticker = e.clock.NewTicker(e.cfg.TickInterval)
		return
	}
	e.ticker.Reset(e.cfg.TickInterval)
}

// disarm stops the ticker and drains any beat that fired before the stop
// landed, so a stale tick cannot debit a paused or finished match. Safe to
// call when the scheduler was never armed.
func (e *Engine) disarm() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	select {
	case <-e.ticker.Chan():
	default:
	}
	e.ticker = nil
}

// tickChan exposes the ticker channel to the run loop. A nil channel blocks
// forever in select, which is exactly what a disarmed scheduler should do.
func (e *Engine) tickChan() <-chan time.Time {
	if e.ticker == nil {
		return nil
	}
	return e.ticker.Chan()
}
