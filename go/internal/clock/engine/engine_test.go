package engine

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/clock/store"
	"github.com/mcdev12/chessclock/go/internal/models"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

// recorder captures every clock event the engine publishes, in order.
type recorder struct {
	events []events.Event
}

var clockTopics = []pubsub.Topic{
	events.TopicStarted,
	events.TopicTick,
	events.TopicTurnSwitched,
	events.TopicLowTime,
	events.TopicCriticalTime,
	events.TopicVictory,
	events.TopicPaused,
	events.TopicResumed,
	events.TopicReset,
}

func newRecorder(bus *pubsub.Bus[events.Event]) *recorder {
	r := &recorder{}
	for _, topic := range clockTopics {
		bus.Subscribe(topic, func(msg events.Event) {
			r.events = append(r.events, msg)
		})
	}
	return r
}

func (r *recorder) topics() []pubsub.Topic {
	out := make([]pubsub.Topic, 0, len(r.events))
	for _, msg := range r.events {
		out = append(out, msg.MessageTopic())
	}
	return out
}

func (r *recorder) clear() {
	r.events = nil
}

type fixture struct {
	engine *Engine
	store  *store.Store
	bus    *pubsub.Bus[events.Event]
	rec    *recorder
}

func newFixture(t *testing.T, duration int, cfg Config) *fixture {
	t.Helper()
	bus := pubsub.NewBus[events.Event]()
	st := store.New(duration)
	st.SetClock(clockwork.NewFakeClock())
	e := New(bus, st, cfg)
	e.SetClock(clockwork.NewFakeClock())
	t.Cleanup(e.Stop)
	return &fixture{engine: e, store: st, bus: bus, rec: newRecorder(bus)}
}

// requireInvariants checks the record shape that must hold after every
// engine operation.
func requireInvariants(t *testing.T, f *fixture) {
	t.Helper()
	rec := f.store.Snapshot()
	require.GreaterOrEqual(t, rec.TimeRemaining[0], 0)
	require.GreaterOrEqual(t, rec.TimeRemaining[1], 0)
	if rec.ActivePlayer == models.NoPlayer {
		require.False(t, rec.Running, "no owner but clock running")
	}
	if rec.Running {
		require.True(t, rec.ActivePlayer.Valid(), "running without an owner")
	}
	require.Len(t, rec.MatchLog, rec.TotalMoves())
}

func TestFiveSecondFlagFall(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	require.True(t, f.engine.SelectDuration(5).Applied)
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	require.Equal(t, StateRunning, f.engine.State())

	for i := 0; i < 5; i++ {
		require.True(t, f.engine.Tick().Applied)
		requireInvariants(t, f)
	}

	require.Equal(t, []pubsub.Topic{
		events.TopicStarted,
		events.TopicTick,
		events.TopicTick,
		events.TopicTick,
		events.TopicTick,
		events.TopicVictory,
	}, f.rec.topics(), "flag fall replaces the final tick")

	seconds := []int{}
	for _, msg := range f.rec.events {
		if tick, ok := msg.(events.TickPayload); ok {
			seconds = append(seconds, tick.SecondsRemaining)
		}
	}
	assert.Equal(t, []int{4, 3, 2, 1}, seconds)

	victory := f.rec.events[len(f.rec.events)-1].(events.VictoryPayload)
	assert.Equal(t, models.PlayerTwo, victory.Winner)
	assert.Equal(t, models.PlayerOne, victory.Loser)
	assert.Equal(t, 5, victory.WinnerSecondsRemaining)
	assert.Equal(t, f.store.MatchID().String(), victory.MatchID)

	assert.Equal(t, StateFinished, f.engine.State())
	assert.Equal(t, models.NoPlayer, f.store.ActivePlayer())
	assert.False(t, f.store.Running())

	outcome := f.engine.Tick()
	assert.False(t, outcome.Applied)
	assert.Equal(t, ReasonNotRunning, outcome.Reason)
}

func TestTurnSwitchRecordsMove(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	for i := 0; i < 3; i++ {
		require.True(t, f.engine.Tick().Applied)
	}
	f.rec.clear()

	outcome := f.engine.RequestTurn(models.PlayerOne)
	require.True(t, outcome.Applied)

	require.Len(t, f.rec.events, 1)
	switched := f.rec.events[0].(events.TurnSwitchedPayload)
	assert.Equal(t, models.PlayerOne, switched.From)
	assert.Equal(t, models.PlayerTwo, switched.To)
	assert.Equal(t, 1, switched.MoveNumber)

	rec := f.store.Snapshot()
	assert.Equal(t, 297, rec.Remaining(models.PlayerOne))
	assert.Equal(t, 300, rec.Remaining(models.PlayerTwo))
	assert.Equal(t, models.PlayerTwo, rec.ActivePlayer)
	require.Len(t, rec.MatchLog, 1)
	assert.Equal(t, models.PlayerOne, rec.MatchLog[0].Player)
	assert.Equal(t, 297, rec.MatchLog[0].TimeRemaining)
	requireInvariants(t, f)

	// ticks now debit the new owner
	require.True(t, f.engine.Tick().Applied)
	assert.Equal(t, 297, f.store.Remaining(models.PlayerOne))
	assert.Equal(t, 299, f.store.Remaining(models.PlayerTwo))
}

func TestPauseFreezesCountdown(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	require.True(t, f.engine.Tick().Applied)
	require.True(t, f.engine.Tick().Applied)
	f.rec.clear()

	require.True(t, f.engine.TogglePause().Applied)
	assert.Equal(t, StatePaused, f.engine.State())
	assert.False(t, f.store.Running())
	assert.Equal(t, models.PlayerOne, f.store.ActivePlayer(), "pause keeps the turn owner")
	requireInvariants(t, f)

	outcome := f.engine.Tick()
	assert.False(t, outcome.Applied)
	assert.Equal(t, ReasonNotRunning, outcome.Reason)
	assert.Equal(t, 298, f.store.Remaining(models.PlayerOne), "paused clock must not move")

	require.True(t, f.engine.TogglePause().Applied)
	assert.Equal(t, StateRunning, f.engine.State())
	require.True(t, f.engine.Tick().Applied)
	assert.Equal(t, 297, f.store.Remaining(models.PlayerOne))

	assert.Equal(t, []pubsub.Topic{
		events.TopicPaused,
		events.TopicResumed,
		events.TopicTick,
	}, f.rec.topics())
}

func TestThresholdWarningsFireOncePerPlayer(t *testing.T) {
	f := newFixture(t, 300, Config{LowThreshold: 3, CriticalThreshold: 1, TickInterval: time.Second})

	require.True(t, f.engine.SelectDuration(5).Applied)
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)

	// player one burns down to 1 second
	for i := 0; i < 4; i++ {
		require.True(t, f.engine.Tick().Applied)
	}

	lows, criticals := 0, 0
	for _, msg := range f.rec.events {
		switch warn := msg.(type) {
		case events.LowTimePayload:
			lows++
			assert.Equal(t, models.PlayerOne, warn.Player)
			assert.Equal(t, 3, warn.SecondsRemaining)
		case events.CriticalTimePayload:
			criticals++
			assert.Equal(t, models.PlayerOne, warn.Player)
			assert.Equal(t, 1, warn.SecondsRemaining)
		}
	}
	assert.Equal(t, 1, lows, "low warning fires on the crossing tick only")
	assert.Equal(t, 1, criticals)

	// hand the clock over; player two crosses their own thresholds
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	f.rec.clear()
	for i := 0; i < 4; i++ {
		require.True(t, f.engine.Tick().Applied)
	}

	lows, criticals = 0, 0
	for _, msg := range f.rec.events {
		switch warn := msg.(type) {
		case events.LowTimePayload:
			lows++
			assert.Equal(t, models.PlayerTwo, warn.Player)
		case events.CriticalTimePayload:
			criticals++
			assert.Equal(t, models.PlayerTwo, warn.Player)
		}
	}
	assert.Equal(t, 1, lows, "each player crosses independently")
	assert.Equal(t, 1, criticals)
}

func TestThresholdWarningsRearmAfterReset(t *testing.T) {
	f := newFixture(t, 300, Config{LowThreshold: 3, TickInterval: time.Second})

	require.True(t, f.engine.SelectDuration(5).Applied)
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	require.True(t, f.engine.Tick().Applied)
	require.True(t, f.engine.Tick().Applied) // crosses 3, low fires

	require.True(t, f.engine.ResetMatch().Applied)
	require.True(t, f.engine.SelectDuration(5).Applied)
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	f.rec.clear()

	require.True(t, f.engine.Tick().Applied)
	require.True(t, f.engine.Tick().Applied)

	lows := 0
	for _, msg := range f.rec.events {
		if _, ok := msg.(events.LowTimePayload); ok {
			lows++
		}
	}
	assert.Equal(t, 1, lows, "a fresh match gets fresh warnings")
}

func TestRuleViolationsAreQuiet(t *testing.T) {
	type violation struct {
		name   string
		setup  func(f *fixture)
		act    func(f *fixture) Outcome
		reason string
	}

	tests := []violation{
		{
			name:   "pause before start",
			setup:  func(f *fixture) {},
			act:    func(f *fixture) Outcome { return f.engine.TogglePause() },
			reason: ReasonNotStarted,
		},
		{
			name:   "tick before start",
			setup:  func(f *fixture) {},
			act:    func(f *fixture) Outcome { return f.engine.Tick() },
			reason: ReasonNotRunning,
		},
		{
			name: "inactive player presses",
			setup: func(f *fixture) {
				f.engine.RequestTurn(models.PlayerOne)
				f.engine.Tick()
			},
			act:    func(f *fixture) Outcome { return f.engine.RequestTurn(models.PlayerTwo) },
			reason: ReasonNotYourTurn,
		},
		{
			name:   "unknown player presses",
			setup:  func(f *fixture) { f.engine.RequestTurn(models.PlayerOne) },
			act:    func(f *fixture) Outcome { return f.engine.RequestTurn(models.PlayerID(7)) },
			reason: ReasonInvalidPlayer,
		},
		{
			name: "press while paused",
			setup: func(f *fixture) {
				f.engine.RequestTurn(models.PlayerOne)
				f.engine.Tick()
				f.engine.TogglePause()
			},
			act:    func(f *fixture) Outcome { return f.engine.RequestTurn(models.PlayerOne) },
			reason: ReasonMatchPaused,
		},
		{
			name: "tick while paused",
			setup: func(f *fixture) {
				f.engine.RequestTurn(models.PlayerOne)
				f.engine.TogglePause()
			},
			act:    func(f *fixture) Outcome { return f.engine.Tick() },
			reason: ReasonNotRunning,
		},
		{
			name: "press after flag fall",
			setup: func(f *fixture) {
				f.engine.SelectDuration(2)
				f.engine.RequestTurn(models.PlayerOne)
				f.engine.Tick()
				f.engine.Tick()
			},
			act:    func(f *fixture) Outcome { return f.engine.RequestTurn(models.PlayerTwo) },
			reason: ReasonMatchFinished,
		},
		{
			name: "pause after flag fall",
			setup: func(f *fixture) {
				f.engine.SelectDuration(2)
				f.engine.RequestTurn(models.PlayerOne)
				f.engine.Tick()
				f.engine.Tick()
			},
			act:    func(f *fixture) Outcome { return f.engine.TogglePause() },
			reason: ReasonMatchFinished,
		},
		{
			name:   "zero duration",
			setup:  func(f *fixture) {},
			act:    func(f *fixture) Outcome { return f.engine.SelectDuration(0) },
			reason: ReasonInvalidDuration,
		},
		{
			name:   "duration at the day ceiling",
			setup:  func(f *fixture) {},
			act:    func(f *fixture) Outcome { return f.engine.SelectDuration(store.MaxDurationSeconds) },
			reason: ReasonInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 300, Config{TickInterval: time.Second})
			tt.setup(f)
			f.rec.clear()
			stateBefore := f.engine.State()
			before := f.store.Snapshot()

			outcome := tt.act(f)

			require.False(t, outcome.Applied)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.Empty(t, f.rec.events, "a rejected intent must not publish")
			assert.Equal(t, stateBefore, f.engine.State())
			assert.Equal(t, before, f.store.Snapshot(), "a rejected intent must not touch the record")
			requireInvariants(t, f)
		})
	}
}

func TestOpeningPressIgnoresItsOwnEcho(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	f.rec.clear()

	// the doubled press arrives before the first tick
	outcome := f.engine.RequestTurn(models.PlayerOne)
	require.False(t, outcome.Applied)
	assert.Equal(t, ReasonDuplicateStart, outcome.Reason)
	assert.Empty(t, f.rec.events)
	assert.Equal(t, 0, f.store.Snapshot().TotalMoves())
	assert.Equal(t, models.PlayerOne, f.store.ActivePlayer())

	// a second later the same press is a real move
	require.True(t, f.engine.Tick().Applied)
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	assert.Equal(t, models.PlayerTwo, f.store.ActivePlayer())
	assert.Equal(t, 1, f.store.Snapshot().TotalMoves())
}

func TestInstantReplyAfterFirstMoveIsLegal(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	require.True(t, f.engine.Tick().Applied)
	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)

	// player two premoves: zero ticks on their clock, still a real move
	outcome := f.engine.RequestTurn(models.PlayerTwo)
	require.True(t, outcome.Applied)
	assert.Equal(t, models.PlayerOne, f.store.ActivePlayer())
	assert.Equal(t, 2, f.store.Snapshot().TotalMoves())
	assert.Equal(t, 300, f.store.Remaining(models.PlayerTwo))
}

func TestResetFromEveryState(t *testing.T) {
	reach := map[string]func(f *fixture){
		"idle":    func(f *fixture) {},
		"running": func(f *fixture) { f.engine.RequestTurn(models.PlayerOne); f.engine.Tick() },
		"paused": func(f *fixture) {
			f.engine.RequestTurn(models.PlayerOne)
			f.engine.Tick()
			f.engine.TogglePause()
		},
		"finished": func(f *fixture) {
			f.engine.SelectDuration(2)
			f.engine.RequestTurn(models.PlayerOne)
			f.engine.Tick()
			f.engine.Tick()
		},
	}

	for name, setup := range reach {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 300, Config{TickInterval: time.Second})
			setup(f)
			oldID := f.store.MatchID()
			f.rec.clear()

			require.True(t, f.engine.ResetMatch().Applied)

			assert.Equal(t, StateIdle, f.engine.State())
			rec := f.store.Snapshot()
			assert.Equal(t, rec.DefaultDuration, rec.Remaining(models.PlayerOne))
			assert.Equal(t, rec.DefaultDuration, rec.Remaining(models.PlayerTwo))
			assert.Equal(t, models.NoPlayer, rec.ActivePlayer)
			assert.False(t, rec.Running)
			assert.Empty(t, rec.MatchLog)
			assert.NotEqual(t, oldID, rec.MatchID, "reset opens a new match")
			requireInvariants(t, f)

			require.Len(t, f.rec.events, 1)
			reset := f.rec.events[0].(events.ResetPayload)
			assert.Equal(t, rec.MatchID.String(), reset.MatchID)

			// the table is playable again
			require.True(t, f.engine.RequestTurn(models.PlayerTwo).Applied)
		})
	}
}

func TestSelectDurationSeedsOnlyWhenIdle(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	require.True(t, f.engine.SelectDuration(600).Applied)
	assert.Equal(t, 600, f.store.Remaining(models.PlayerOne))
	assert.Equal(t, 600, f.store.Remaining(models.PlayerTwo))

	require.True(t, f.engine.RequestTurn(models.PlayerOne).Applied)
	require.True(t, f.engine.Tick().Applied)

	// mid-match the change is deferred to the next reset
	require.True(t, f.engine.SelectDuration(180).Applied)
	assert.Equal(t, 599, f.store.Remaining(models.PlayerOne))
	assert.Equal(t, 600, f.store.Remaining(models.PlayerTwo))

	require.True(t, f.engine.ResetMatch().Applied)
	assert.Equal(t, 180, f.store.Remaining(models.PlayerOne))
	assert.Equal(t, 180, f.store.Remaining(models.PlayerTwo))
}

func TestIntentsArriveOverTheBus(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	f.bus.Publish(events.DurationSelectedPayload{Seconds: 60})
	f.bus.Publish(events.TurnRequestPayload{Player: models.PlayerOne})
	require.Equal(t, StateRunning, f.engine.State())
	assert.Equal(t, 60, f.store.Remaining(models.PlayerOne))

	f.bus.Publish(events.PauseTogglePayload{})
	assert.Equal(t, StatePaused, f.engine.State())

	f.bus.Publish(events.ResetRequestPayload{})
	assert.Equal(t, StateIdle, f.engine.State())
}

func TestStopDropsIntentSubscriptions(t *testing.T) {
	f := newFixture(t, 300, Config{TickInterval: time.Second})

	f.engine.Stop()

	f.bus.Publish(events.TurnRequestPayload{Player: models.PlayerOne})
	assert.Equal(t, StateIdle, f.engine.State(), "a stopped engine ignores intents")
	assert.Equal(t, models.NoPlayer, f.store.ActivePlayer())
}
