package models

// PlayerID identifies one side of the board. Zero means no player owns the
// clock (game idle or finished).
type PlayerID int

const (
	NoPlayer  PlayerID = 0
	PlayerOne PlayerID = 1
	PlayerTwo PlayerID = 2
)

// Valid reports whether p is a seated player (1 or 2)
func (p PlayerID) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// Opponent returns the other seated player. NoPlayer has no opponent.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		return NoPlayer
	}
}

// Index maps player 1/2 to array slot 0/1. Callers must check Valid first;
// NoPlayer maps to -1.
func (p PlayerID) Index() int {
	return int(p) - 1
}
