// Package engine implements the chess clock rules on top of the store and the
// bus: a four-state match lifecycle, a 1 Hz countdown scheduler, edge-triggered
// low and critical time warnings, and victory on flag fall.
package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/clock/store"
	"github.com/mcdev12/chessclock/go/internal/models"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

// Config tunes the engine. Thresholds are seconds remaining; zero disables a
// threshold. A non-positive tick interval falls back to one second.
type Config struct {
	LowThreshold      int
	CriticalThreshold int
	TickInterval      time.Duration
}

// DefaultConfig returns the production settings: warnings at one minute and
// ten seconds, ticking once per second.
func DefaultConfig() Config {
	return Config{
		LowThreshold:      60,
		CriticalThreshold: 10,
		TickInterval:      time.Second,
	}
}

// Engine owns the match state machine. It is the sole issuer of store
// commands; every other module observes. An Engine is not safe for concurrent
// use: production runs it on the Run goroutine, tests drive the intent
// methods directly.
type Engine struct {
	bus   *pubsub.Bus[events.Event]
	store *store.Store
	clock clockwork.Clock
	cfg   Config

	state  State
	ticker clockwork.Ticker

	// threshold edge flags, per player, cleared on reset and reseed
	lowFired      [2]bool
	criticalFired [2]bool

	// ticks since the current turn began; used to swallow the doubled
	// press that starts a match (tap events arrive twice from some inputs)
	ticksThisTurn int

	inbox   chan events.Event
	cancels []pubsub.CancelFunc
}

const inboxSize = 16

// New wires an engine to its bus and store and subscribes the intent topics.
// The store must be freshly created: the engine assumes an idle record.
func New(bus *pubsub.Bus[events.Event], st *store.Store, cfg Config) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	e := &Engine{
		bus:   bus,
		store: st,
		clock: clockwork.NewRealClock(),
		cfg:   cfg,
		state: StateIdle,
		inbox: make(chan events.Event, inboxSize),
	}
	e.subscribeIntents()
	return e
}

// SetClock swaps the scheduler clock. Tests install a clockwork fake before
// the first arm.
func (e *Engine) SetClock(clock clockwork.Clock) {
	e.clock = clock
}

// State returns the engine's position in the match lifecycle.
func (e *Engine) State() State {
	return e.state
}

// Stop disarms the scheduler and drops the engine's bus subscriptions.
func (e *Engine) Stop() {
	e.disarm()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil
}

func (e *Engine) subscribeIntents() {
	e.cancels = append(e.cancels,
		e.bus.Subscribe(events.TopicTurnRequest, func(msg events.Event) {
			if intent, ok := msg.(events.TurnRequestPayload); ok {
				e.RequestTurn(intent.Player)
			}
		}),
		e.bus.Subscribe(events.TopicPauseToggle, func(msg events.Event) {
			e.TogglePause()
		}),
		e.bus.Subscribe(events.TopicResetRequest, func(msg events.Event) {
			e.ResetMatch()
		}),
		e.bus.Subscribe(events.TopicDurationSelected, func(msg events.Event) {
			if intent, ok := msg.(events.DurationSelectedPayload); ok {
				e.SelectDuration(intent.Seconds)
			}
		}),
	)
}

// RequestTurn handles a press on player p's side: the opening press starts
// their clock, a press while they hold the clock records their move and hands
// the clock to the opponent. Presses by the inactive player, or while paused
// or finished, change nothing.
func (e *Engine) RequestTurn(p models.PlayerID) Outcome {
	if !p.Valid() {
		log.Warn().Int("player", int(p)).Msg("turn request with invalid player id")
		return rejected(ReasonInvalidPlayer)
	}

	switch e.state {
	case StateIdle:
		return e.startMatch(p)

	case StateRunning:
		active := e.store.ActivePlayer()
		if p != active {
			log.Debug().
				Int("player", int(p)).
				Int("active_player", int(active)).
				Msg("turn request from inactive player ignored")
			return rejected(ReasonNotYourTurn)
		}
		if e.ticksThisTurn == 0 && e.store.Snapshot().TotalMoves() == 0 {
			log.Debug().
				Int("player", int(p)).
				Msg("duplicate start press ignored")
			return rejected(ReasonDuplicateStart)
		}
		return e.switchTurn(p)

	case StatePaused:
		log.Debug().Int("player", int(p)).Msg("turn request while paused ignored")
		return rejected(ReasonMatchPaused)

	default: // StateFinished
		log.Debug().Int("player", int(p)).Msg("turn request after flag fall ignored")
		return rejected(ReasonMatchFinished)
	}
}

func (e *Engine) startMatch(p models.PlayerID) Outcome {
	if err := e.store.Apply(store.SetActivePlayer{Player: p}); err != nil {
		log.Error().Err(err).Msg("failed to seat first player")
		return rejected(ReasonInvalidPlayer)
	}
	e.state = StateRunning
	e.ticksThisTurn = 0
	e.arm()

	log.Info().
		Str("match_id", e.matchID()).
		Int("player", int(p)).
		Int("seconds", e.store.Remaining(p)).
		Msg("match started")

	e.bus.Publish(events.StartedPayload{MatchID: e.matchID(), Player: p})
	return applied()
}

func (e *Engine) switchTurn(p models.PlayerID) Outcome {
	next := p.Opponent()
	if err := e.store.Apply(store.RecordMove{Player: p}); err != nil {
		log.Error().Err(err).Msg("failed to record move")
		return rejected(ReasonNotYourTurn)
	}
	if err := e.store.Apply(store.SetActivePlayer{Player: next}); err != nil {
		log.Error().Err(err).Msg("failed to hand over the clock")
		return rejected(ReasonInvalidPlayer)
	}
	e.ticksThisTurn = 0
	// Fresh period for the receiving player; the relinquishing player's
	// partial second is discarded
	e.arm()

	moveNumber := e.store.Snapshot().TotalMoves()
	log.Info().
		Str("match_id", e.matchID()).
		Int("from", int(p)).
		Int("to", int(next)).
		Int("move_number", moveNumber).
		Msg("turn switched")

	e.bus.Publish(events.TurnSwitchedPayload{
		MatchID:    e.matchID(),
		From:       p,
		To:         next,
		MoveNumber: moveNumber,
	})
	return applied()
}

// TogglePause freezes a running match or resumes a paused one. The resumed
// player gets a whole fresh second: the interrupted interval restarts rather
// than carrying a fraction across the pause.
func (e *Engine) TogglePause() Outcome {
	switch e.state {
	case StateRunning:
		if err := e.store.Apply(store.SetPaused{Paused: true}); err != nil {
			log.Error().Err(err).Msg("failed to pause")
			return rejected(ReasonNotStarted)
		}
		e.state = StatePaused
		e.disarm()
		log.Info().Str("match_id", e.matchID()).Msg("match paused")
		e.bus.Publish(events.PausedPayload{MatchID: e.matchID()})
		return applied()

	case StatePaused:
		if err := e.store.Apply(store.SetPaused{Paused: false}); err != nil {
			log.Error().Err(err).Msg("failed to resume")
			return rejected(ReasonNotStarted)
		}
		e.state = StateRunning
		e.arm()
		log.Info().Str("match_id", e.matchID()).Msg("match resumed")
		e.bus.Publish(events.ResumedPayload{MatchID: e.matchID()})
		return applied()

	case StateIdle:
		log.Debug().Msg("pause toggle before start ignored")
		return rejected(ReasonNotStarted)

	default: // StateFinished
		log.Debug().Msg("pause toggle after flag fall ignored")
		return rejected(ReasonMatchFinished)
	}
}

// ResetMatch throws the current match away from any state: scheduler
// disarmed, record reseeded from the default duration, threshold flags
// cleared.
func (e *Engine) ResetMatch() Outcome {
	e.disarm()
	if err := e.store.Apply(store.Reset{}); err != nil {
		log.Error().Err(err).Msg("failed to reset record")
		return rejected(ReasonNotRunning)
	}
	e.state = StateIdle
	e.clearThresholds()
	e.ticksThisTurn = 0

	log.Info().Str("match_id", e.matchID()).Msg("match reset")
	e.bus.Publish(events.ResetPayload{MatchID: e.matchID()})
	return applied()
}

// SelectDuration changes the default duration. While the game is idle it also
// reseeds both clocks and restarts threshold tracking; mid-match it only
// affects the next reset.
func (e *Engine) SelectDuration(seconds int) Outcome {
	if err := e.store.Apply(store.SetDuration{Seconds: seconds}); err != nil {
		return rejected(ReasonInvalidDuration)
	}
	if e.state == StateIdle {
		if err := e.store.Apply(store.SeedTimes{Seconds: seconds}); err != nil {
			log.Error().Err(err).Msg("failed to seed times")
			return rejected(ReasonInvalidDuration)
		}
		e.clearThresholds()
	}
	log.Info().
		Int("seconds", seconds).
		Bool("seeded", e.state == StateIdle).
		Msg("duration selected")
	return applied()
}

// Tick is one scheduler beat: take a second from the active player, then
// either announce the new remaining time (with threshold warnings) or finish
// the match when the clock hit zero. A beat landing after a pause or the flag
// fall is dropped.
func (e *Engine) Tick() Outcome {
	if e.state != StateRunning {
		log.Debug().Str("state", string(e.state)).Msg("tick outside running state dropped")
		return rejected(ReasonNotRunning)
	}

	p := e.store.ActivePlayer()
	if err := e.store.Apply(store.DecrementActive{}); err != nil {
		log.Error().Err(err).Msg("failed to decrement active player")
		return rejected(ReasonNotRunning)
	}
	e.ticksThisTurn++

	remaining := e.store.Remaining(p)
	if remaining <= 0 {
		return e.finish(p)
	}

	e.bus.Publish(events.TickPayload{
		MatchID:          e.matchID(),
		Player:           p,
		SecondsRemaining: remaining,
	})
	e.checkThresholds(p, remaining)
	return applied()
}

// finish ends the match: loser's flag fell, the opponent wins with whatever
// time they had left.
func (e *Engine) finish(loser models.PlayerID) Outcome {
	e.disarm()
	winner := loser.Opponent()
	winnerRemaining := e.store.Remaining(winner)

	if err := e.store.Apply(store.SetActivePlayer{Player: models.NoPlayer}); err != nil {
		log.Error().Err(err).Msg("failed to release the clock on flag fall")
	}
	e.state = StateFinished

	log.Info().
		Str("match_id", e.matchID()).
		Int("winner", int(winner)).
		Int("loser", int(loser)).
		Int("winner_seconds_remaining", winnerRemaining).
		Msg("flag fell")

	e.bus.Publish(events.VictoryPayload{
		MatchID:                e.matchID(),
		Winner:                 winner,
		Loser:                  loser,
		WinnerSecondsRemaining: winnerRemaining,
	})
	return applied()
}

// checkThresholds publishes the low and critical warnings, each at most once
// per player per match.
func (e *Engine) checkThresholds(p models.PlayerID, remaining int) {
	i := p.Index()
	if e.cfg.LowThreshold > 0 && remaining <= e.cfg.LowThreshold && !e.lowFired[i] {
		e.lowFired[i] = true
		log.Info().
			Str("match_id", e.matchID()).
			Int("player", int(p)).
			Int("seconds_remaining", remaining).
			Msg("low time")
		e.bus.Publish(events.LowTimePayload{
			MatchID:          e.matchID(),
			Player:           p,
			SecondsRemaining: remaining,
		})
	}
	if e.cfg.CriticalThreshold > 0 && remaining <= e.cfg.CriticalThreshold && !e.criticalFired[i] {
		e.criticalFired[i] = true
		log.Info().
			Str("match_id", e.matchID()).
			Int("player", int(p)).
			Int("seconds_remaining", remaining).
			Msg("critical time")
		e.bus.Publish(events.CriticalTimePayload{
			MatchID:          e.matchID(),
			Player:           p,
			SecondsRemaining: remaining,
		})
	}
}

func (e *Engine) clearThresholds() {
	e.lowFired = [2]bool{}
	e.criticalFired = [2]bool{}
}

func (e *Engine) matchID() string {
	return e.store.MatchID().String()
}
