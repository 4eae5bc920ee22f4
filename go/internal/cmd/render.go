package main

import (
	"fmt"
	"io"

	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

// renderer turns clock events into terminal output. Handlers run on the
// engine goroutine, so rendering is plain sequential writes.
type renderer struct {
	out io.Writer
}

func newRenderer(bus *pubsub.Bus[events.Event], out io.Writer) *renderer {
	r := &renderer{out: out}

	bus.Subscribe(events.TopicStarted, func(msg events.Event) {
		if payload, ok := msg.(events.StartedPayload); ok {
			fmt.Fprintf(r.out, "match on: player %d is on the clock\n", payload.Player)
		}
	})
	bus.Subscribe(events.TopicTick, func(msg events.Event) {
		if payload, ok := msg.(events.TickPayload); ok {
			// overwrite in place so the countdown stays on one line
			fmt.Fprintf(r.out, "\r  player %d  %s ", payload.Player, formatClock(payload.SecondsRemaining))
		}
	})
	bus.Subscribe(events.TopicTurnSwitched, func(msg events.Event) {
		if payload, ok := msg.(events.TurnSwitchedPayload); ok {
			fmt.Fprintf(r.out, "\nmove %d: player %d passes the clock to player %d\n",
				payload.MoveNumber, payload.From, payload.To)
		}
	})
	bus.Subscribe(events.TopicLowTime, func(msg events.Event) {
		if payload, ok := msg.(events.LowTimePayload); ok {
			fmt.Fprintf(r.out, "\nplayer %d is low on time: %s left\n",
				payload.Player, formatClock(payload.SecondsRemaining))
		}
	})
	bus.Subscribe(events.TopicCriticalTime, func(msg events.Event) {
		if payload, ok := msg.(events.CriticalTimePayload); ok {
			// BEL so the warning is audible away from the screen
			fmt.Fprintf(r.out, "\a\nplayer %d critical: %s left\n",
				payload.Player, formatClock(payload.SecondsRemaining))
		}
	})
	bus.Subscribe(events.TopicVictory, func(msg events.Event) {
		if payload, ok := msg.(events.VictoryPayload); ok {
			fmt.Fprintf(r.out, "\nflag fall: player %d wins with %s to spare\n",
				payload.Winner, formatClock(payload.WinnerSecondsRemaining))
		}
	})
	bus.Subscribe(events.TopicPaused, func(msg events.Event) {
		fmt.Fprintln(r.out, "\npaused")
	})
	bus.Subscribe(events.TopicResumed, func(msg events.Event) {
		fmt.Fprintln(r.out, "resumed")
	})
	bus.Subscribe(events.TopicReset, func(msg events.Event) {
		fmt.Fprintln(r.out, "\nclocks reset, press 1 or 2 to start")
	})

	return r
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
