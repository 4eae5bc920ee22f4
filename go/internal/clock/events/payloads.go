package events

import (
	"github.com/mcdev12/chessclock/go/internal/models"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

// StartedPayload announces the first turn of a match.
type StartedPayload struct {
	MatchID string          `json:"match_id"`
	Player  models.PlayerID `json:"player"`
}

// TickPayload is one elapsed second on the active player's clock.
type TickPayload struct {
	MatchID          string          `json:"match_id"`
	Player           models.PlayerID `json:"player"`
	SecondsRemaining int             `json:"seconds_remaining"`
}

// TurnSwitchedPayload reports a completed move: From relinquished the clock to
// To, and MoveNumber is the total number of completed moves in the match.
type TurnSwitchedPayload struct {
	MatchID    string          `json:"match_id"`
	From       models.PlayerID `json:"from"`
	To         models.PlayerID `json:"to"`
	MoveNumber int             `json:"move_number"`
}

// LowTimePayload fires once per player per match when their remaining time
// first crosses the low threshold.
type LowTimePayload struct {
	MatchID          string          `json:"match_id"`
	Player           models.PlayerID `json:"player"`
	SecondsRemaining int             `json:"seconds_remaining"`
}

// CriticalTimePayload fires once per player per match when their remaining
// time first crosses the critical threshold.
type CriticalTimePayload struct {
	MatchID          string          `json:"match_id"`
	Player           models.PlayerID `json:"player"`
	SecondsRemaining int             `json:"seconds_remaining"`
}

// VictoryPayload announces flag fall: the loser's clock hit zero.
type VictoryPayload struct {
	MatchID                string          `json:"match_id"`
	Winner                 models.PlayerID `json:"winner"`
	Loser                  models.PlayerID `json:"loser"`
	WinnerSecondsRemaining int             `json:"winner_seconds_remaining"`
}

// PausedPayload announces the clock froze mid-match.
type PausedPayload struct {
	MatchID string `json:"match_id"`
}

// ResumedPayload announces the clock is counting down again.
type ResumedPayload struct {
	MatchID string `json:"match_id"`
}

// ResetPayload announces the match was thrown away. MatchID is the id of the
// fresh idle match that replaced it.
type ResetPayload struct {
	MatchID string `json:"match_id"`
}

// TurnRequestPayload asks the engine for a turn change on behalf of Player:
// the opening press when the game is idle, a relinquish when they hold the
// clock.
type TurnRequestPayload struct {
	Player models.PlayerID `json:"player"`
}

// PauseTogglePayload asks the engine to pause a running match or resume a
// paused one.
type PauseTogglePayload struct{}

// ResetRequestPayload asks the engine to throw the current match away.
type ResetRequestPayload struct{}

// DurationSelectedPayload asks the engine to change the default duration, and
// to reseed both clocks with it when the game is idle.
type DurationSelectedPayload struct {
	Seconds int `json:"seconds"`
}

func (StartedPayload) MessageTopic() pubsub.Topic          { return TopicStarted }
func (TickPayload) MessageTopic() pubsub.Topic             { return TopicTick }
func (TurnSwitchedPayload) MessageTopic() pubsub.Topic     { return TopicTurnSwitched }
func (LowTimePayload) MessageTopic() pubsub.Topic          { return TopicLowTime }
func (CriticalTimePayload) MessageTopic() pubsub.Topic     { return TopicCriticalTime }
func (VictoryPayload) MessageTopic() pubsub.Topic          { return TopicVictory }
func (PausedPayload) MessageTopic() pubsub.Topic           { return TopicPaused }
func (ResumedPayload) MessageTopic() pubsub.Topic          { return TopicResumed }
func (ResetPayload) MessageTopic() pubsub.Topic            { return TopicReset }
func (TurnRequestPayload) MessageTopic() pubsub.Topic      { return TopicTurnRequest }
func (PauseTogglePayload) MessageTopic() pubsub.Topic      { return TopicPauseToggle }
func (ResetRequestPayload) MessageTopic() pubsub.Topic     { return TopicResetRequest }
func (DurationSelectedPayload) MessageTopic() pubsub.Topic { return TopicDurationSelected }

func (StartedPayload) isEvent()          {}
func (TickPayload) isEvent()             {}
func (TurnSwitchedPayload) isEvent()     {}
func (LowTimePayload) isEvent()          {}
func (CriticalTimePayload) isEvent()     {}
func (VictoryPayload) isEvent()          {}
func (PausedPayload) isEvent()           {}
func (ResumedPayload) isEvent()          {}
func (ResetPayload) isEvent()            {}
func (TurnRequestPayload) isEvent()      {}
func (PauseTogglePayload) isEvent()      {}
func (ResetRequestPayload) isEvent()     {}
func (DurationSelectedPayload) isEvent() {}
