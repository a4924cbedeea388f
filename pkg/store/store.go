package store

import (
	"context"
	"errors"

	"furiousfive-server/pkg/game"
)

// ErrRoomNotFound is returned for operations on an unknown room code
var ErrRoomNotFound = errors.New("room not found")

// Store is the authoritative room store: per-room GameState keyed by room
// code. Reads and writes count as activity for idle-eviction purposes.
// Implementations must be safe for concurrent use; per-room write ordering is
// the caller's responsibility (the room lock).
type Store interface {
	// CreateRoom stores the state under its room code
	CreateRoom(ctx context.Context, state *game.State) error

	// GetRoom returns the state for the room code, or ErrRoomNotFound
	GetRoom(ctx context.Context, roomCode string) (*game.State, error)

	// UpdateRoom replaces the state for an existing room, or returns ErrRoomNotFound
	UpdateRoom(ctx context.Context, roomCode string, state *game.State) error

	// DeleteRoom removes the room. Deleting an unknown room is not an error.
	DeleteRoom(ctx context.Context, roomCode string) error

	// ListActiveRooms returns the codes of all live rooms
	ListActiveRooms(ctx context.Context) ([]string, error)
}
