package models

import "time"

// MoveRecord is one immutable match log entry: which player relinquished the
// turn, when, and with how much time left on their clock.
type MoveRecord struct {
	Player        PlayerID  `json:"player"`
	At            time.Time `json:"at"`
	TimeRemaining int       `json:"time_remaining"`
}
