// Package stats persists finished matches to SQLite and answers head-to-head
// queries. It listens on the bus like any other consumer; the engine never
// knows it exists.
package stats

import (
	"time"

	"github.com/mcdev12/chessclock/go/internal/models"
)

// MatchSummary is one finished match as written to storage
type MatchSummary struct {
	MatchID                string          `json:"match_id"`
	Winner                 models.PlayerID `json:"winner"`
	Loser                  models.PlayerID `json:"loser"`
	WinnerSecondsRemaining int             `json:"winner_seconds_remaining"`
	Moves                  [2]int          `json:"moves"`
	StartedAt              time.Time       `json:"started_at"`
	FinishedAt             time.Time       `json:"finished_at"`
}

// PlayerTally aggregates one player's record across all stored matches
type PlayerTally struct {
	Player models.PlayerID `json:"player"`
	Wins   int             `json:"wins"`
	Losses int             `json:"losses"`
	Moves  int             `json:"moves"`
}
