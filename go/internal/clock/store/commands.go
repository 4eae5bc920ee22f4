package store

import "github.com/mcdev12/chessclock/go/internal/models"

// MaxDurationSeconds is the exclusive ceiling for durations: anything from one
// second up to a day is accepted.
const MaxDurationSeconds = 24 * 60 * 60

// DefaultDurationSeconds seeds a store when no duration was configured.
const DefaultDurationSeconds = 300

// Command is one atomic, validated mutation of the Record. The set of
// commands is closed: every variant lives in this package, and Apply validates
// the payload before touching any field.
type Command interface {
	isCommand()
	name() string
}

// SetDuration stores a new default duration without touching the match in
// progress.
type SetDuration struct {
	Seconds int
}

// SeedTimes sets both players' remaining time to the same value. The engine
// issues it when a duration is selected while the game is idle.
type SeedTimes struct {
	Seconds int
}

// DecrementActive takes one second from the active player's clock, clamping
// at zero.
type DecrementActive struct{}

// SetActivePlayer hands the clock to a player. NoPlayer releases it and stops
// the countdown.
type SetActivePlayer struct {
	Player models.PlayerID
}

// RecordMove credits the active player with one completed move and appends a
// MoveRecord to the match log.
type RecordMove struct {
	Player models.PlayerID
}

// SetPaused freezes or unfreezes the countdown while a player owns the clock.
type SetPaused struct {
	Paused bool
}

// Reset returns the record to idle: both clocks at the current default
// duration, no moves, empty log, fresh match id.
type Reset struct{}

func (SetDuration) isCommand()     {}
func (SeedTimes) isCommand()       {}
func (DecrementActive) isCommand() {}
func (SetActivePlayer) isCommand() {}
func (RecordMove) isCommand()      {}
func (SetPaused) isCommand()       {}
func (Reset) isCommand()           {}

func (SetDuration) name() string     { return "SetDuration" }
func (SeedTimes) name() string       { return "SeedTimes" }
func (DecrementActive) name() string { return "DecrementActive" }
func (SetActivePlayer) name() string { return "SetActivePlayer" }
func (RecordMove) name() string      { return "RecordMove" }
func (SetPaused) name() string       { return "SetPaused" }
func (Reset) name() string           { return "Reset" }
