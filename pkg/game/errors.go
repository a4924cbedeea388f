package game

import (
	"errors"
	"fmt"
)

// ErrRoomFull is returned when a sixth player tries to join
var ErrRoomFull = errors.New("room is full")

// ErrDuplicatePlayer is returned when a player ID is already seated
var ErrDuplicatePlayer = errors.New("player already in game")

// ErrInsufficientPlayers is returned when a round starts with fewer than two players
var ErrInsufficientPlayers = errors.New("need at least 2 players to start")

// ErrNotYourTurn is returned when a player acts out of turn
var ErrNotYourTurn = errors.New("not your turn")

// ErrWrongPhase is returned when an action does not fit the current phase or turn stage
var ErrWrongPhase = errors.New("action not allowed in current phase")

// ErrInvalidDrop is returned when a proposed drop fails validation
var ErrInvalidDrop = errors.New("invalid drop")

// ErrNoTableDrop is returned when a table draw is attempted with no drop on the table
var ErrNoTableDrop = errors.New("no table drop available")

// ErrIneligibleTableCard is returned when the indexed table card may not be taken
var ErrIneligibleTableCard = errors.New("cannot draw that card from table")

// ErrCannotCall is returned when a player calls without being eligible
var ErrCannotCall = errors.New("cannot call")

// ErrUnknownPlayer is returned when a player ID is not seated in the room
var ErrUnknownPlayer = errors.New("player not in game")

// InvariantError signals a corrupted state after a transition. It is a
// programming-error assertion, not a user-facing rule violation; callers must
// not persist or broadcast the offending state.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}
