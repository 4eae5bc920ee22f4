package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/models"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

func TestRendererOutput(t *testing.T) {
	bus := pubsub.NewBus[events.Event]()
	var buf bytes.Buffer
	newRenderer(bus, &buf)

	bus.Publish(events.StartedPayload{MatchID: "m", Player: models.PlayerOne})
	bus.Publish(events.TickPayload{MatchID: "m", Player: models.PlayerOne, SecondsRemaining: 272})
	bus.Publish(events.TurnSwitchedPayload{MatchID: "m", From: models.PlayerOne, To: models.PlayerTwo, MoveNumber: 4})
	bus.Publish(events.VictoryPayload{MatchID: "m", Winner: models.PlayerTwo, Loser: models.PlayerOne, WinnerSecondsRemaining: 61})

	out := buf.String()
	assert.Contains(t, out, "player 1 is on the clock")
	assert.Contains(t, out, "04:32")
	assert.Contains(t, out, "move 4: player 1 passes the clock to player 2")
	assert.Contains(t, out, "flag fall: player 2 wins with 01:01 to spare")
}

func TestRendererRingsBellOnCriticalTime(t *testing.T) {
	bus := pubsub.NewBus[events.Event]()
	var buf bytes.Buffer
	newRenderer(bus, &buf)

	bus.Publish(events.CriticalTimePayload{MatchID: "m", Player: models.PlayerTwo, SecondsRemaining: 9})

	assert.Contains(t, buf.String(), "\a")
	assert.Contains(t, buf.String(), "player 2 critical: 00:09 left")
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "05:00", formatClock(300))
	assert.Equal(t, "00:09", formatClock(9))
	assert.Equal(t, "1440:00", formatClock(86400))
	assert.Equal(t, "00:00", formatClock(-3))
}
