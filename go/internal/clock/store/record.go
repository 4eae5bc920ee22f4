package store

import (
	"github.com/google/uuid"

	"github.com/mcdev12/chessclock/go/internal/models"
)

// Field keys one observable slot of the Record for per-field observers.
type Field string

const (
	FieldTimeRemaining   Field = "timeRemaining"
	FieldMovesMade       Field = "movesMade"
	FieldActivePlayer    Field = "activePlayer"
	FieldRunning         Field = "running"
	FieldDefaultDuration Field = "defaultDuration"
	FieldMatchLog        Field = "matchLog"
	FieldMatchID         Field = "matchID"
)

// fieldAny is the wildcard slot backing ObserveAll.
const fieldAny Field = "*"

// Record is the complete clock state. Player-indexed slices use slot 0 for
// player 1 and slot 1 for player 2 (models.PlayerID.Index).
type Record struct {
	TimeRemaining   [2]int              `json:"time_remaining"`
	MovesMade       [2]int              `json:"moves_made"`
	ActivePlayer    models.PlayerID     `json:"active_player"`
	Running         bool                `json:"running"`
	DefaultDuration int                 `json:"default_duration"`
	MatchLog        []models.MoveRecord `json:"match_log"`
	MatchID         uuid.UUID           `json:"match_id"`
}

// Remaining returns the seconds left on player p's clock.
func (r Record) Remaining(p models.PlayerID) int {
	if !p.Valid() {
		return 0
	}
	return r.TimeRemaining[p.Index()]
}

// Moves returns the number of completed moves by player p.
func (r Record) Moves(p models.PlayerID) int {
	if !p.Valid() {
		return 0
	}
	return r.MovesMade[p.Index()]
}

// TotalMoves returns the number of completed moves in the match, which always
// equals the match log length.
func (r Record) TotalMoves() int {
	return r.MovesMade[0] + r.MovesMade[1]
}

// clone deep-copies the record so observers and readers can never share the
// store's live match log slice.
func (r Record) clone() Record {
	cp := r
	if r.MatchLog != nil {
		cp.MatchLog = append([]models.MoveRecord(nil), r.MatchLog...)
	}
	return cp
}

// diffFields lists the fields whose values differ between two records, in
// declaration order. MatchLog is append-only within a match and replaced
// wholesale on reset, so length comparison is sufficient.
func diffFields(before, after Record) []Field {
	var fields []Field
	if before.TimeRemaining != after.TimeRemaining {
		fields = append(fields, FieldTimeRemaining)
	}
	if before.MovesMade != after.MovesMade {
		fields = append(fields, FieldMovesMade)
	}
	if before.ActivePlayer != after.ActivePlayer {
		fields = append(fields, FieldActivePlayer)
	}
	if before.Running != after.Running {
		fields = append(fields, FieldRunning)
	}
	if before.DefaultDuration != after.DefaultDuration {
		fields = append(fields, FieldDefaultDuration)
	}
	if len(before.MatchLog) != len(after.MatchLog) {
		fields = append(fields, FieldMatchLog)
	}
	if before.MatchID != after.MatchID {
		fields = append(fields, FieldMatchID)
	}
	return fields
}
