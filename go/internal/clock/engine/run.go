package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/chessclock/go/internal/clock/events"
)

// Dispatch hands an intent to the run loop from another goroutine. It never
// blocks: a full inbox drops the intent with a warning.
func (e *Engine) Dispatch(msg events.Event) {
	select {
	case e.inbox <- msg:
	default:
		log.Warn().
			Str("topic", string(msg.MessageTopic())).
			Msg("engine inbox full, intent dropped")
	}
}

// Run drives the engine until ctx is cancelled. Every store command, bus
// publish, and state transition happens on this goroutine; the rest of the
// process talks to the engine through Dispatch.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().
		Int("low_threshold", e.cfg.LowThreshold).
		Int("critical_threshold", e.cfg.CriticalThreshold).
		Dur("tick_interval", e.cfg.TickInterval).
		Msg("clock engine running")

	for {
		select {
		case <-ctx.Done():
			e.disarm()
			log.Info().Msg("clock engine stopped")
			return nil
		case msg := <-e.inbox:
			e.bus.Publish(msg)
		case <-e.tickChan():
			e.Tick()
		}
	}
}
