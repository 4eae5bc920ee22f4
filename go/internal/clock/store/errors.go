package store

import "errors"

// ErrInvalidDuration is returned when a duration is not a positive number of seconds under a day
var ErrInvalidDuration = errors.New("invalid duration")

// ErrInvalidPlayer is returned when a player id is not 0, 1, or 2
var ErrInvalidPlayer = errors.New("invalid player")

// ErrNotActivePlayer is returned when a move is recorded for a player who does not own the clock
var ErrNotActivePlayer = errors.New("player does not own the clock")

// ErrClockNotRunning is returned when a decrement arrives while no clock is counting down
var ErrClockNotRunning = errors.New("clock not running")

// ErrNoOwner is returned when pause state changes while no player owns the clock
var ErrNoOwner = errors.New("no player owns the clock")
