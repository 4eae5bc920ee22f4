package engine

// State is the engine's position in the match lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

// Outcome reports whether an intent changed the game. Rule violations are
// quiet no-ops at game level (duplicate human input must be idempotent), but
// callers and tests can see why nothing happened.
type Outcome struct {
	Applied bool
	Reason  string
}

// Reject reasons for intents that did not change the game.
const (
	ReasonInvalidPlayer   = "invalid_player"
	ReasonInvalidDuration = "invalid_duration"
	ReasonNotYourTurn     = "not_your_turn"
	ReasonDuplicateStart  = "duplicate_start"
	ReasonMatchPaused     = "match_paused"
	ReasonMatchFinished   = "match_finished"
	ReasonNotStarted      = "match_not_started"
	ReasonNotRunning      = "clock_not_running"
)

func applied() Outcome {
	return Outcome{Applied: true}
}

func rejected(reason string) Outcome {
	return Outcome{Reason: reason}
}
