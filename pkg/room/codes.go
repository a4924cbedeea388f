package room

import (
	"errors"

	"furiousfive-server/pkg/game"
	"furiousfive-server/pkg/store"
)

// ErrGameInProgress is returned when joining a room that already started playing
var ErrGameInProgress = errors.New("game already in progress")

// ErrPlayerNameTaken is returned when a joining player's name is already seated
var ErrPlayerNameTaken = errors.New("a player with that name is already in the room")

// ErrNotInRoom is returned when a room-scoped message arrives from an unbound connection
var ErrNotInRoom = errors.New("not in a room")

// ErrNotInGame is returned when a turn message arrives from a connection with no seat
var ErrNotInGame = errors.New("not in a game")

// ErrParse is returned for a malformed message envelope or payload
var ErrParse = errors.New("invalid message format")

// stable wire error codes
const (
	CodeRoomFull            = "ROOM_FULL"
	CodeDuplicatePlayer     = "DUPLICATE_PLAYER"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeWrongPhase          = "WRONG_PHASE"
	CodeInvalidDrop         = "INVALID_DROP"
	CodeNoTableDrop         = "NO_TABLE_DROP"
	CodeIneligibleTableCard = "INELIGIBLE_TABLE_CARD"
	CodeCannotCall          = "CANNOT_CALL"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeNotInRoom           = "NOT_IN_ROOM"
	CodeNotInGame           = "NOT_IN_GAME"
	CodeGameInProgress      = "GAME_IN_PROGRESS"
	CodePlayerAlreadyExists = "PLAYER_ALREADY_EXISTS"
	CodeParseError          = "PARSE_ERROR"
	CodeUnknownMessage      = "UNKNOWN_MESSAGE"
	CodeInternalError       = "INTERNAL_ERROR"
)

var errorCodes = map[error]string{
	game.ErrRoomFull:            CodeRoomFull,
	game.ErrDuplicatePlayer:     CodeDuplicatePlayer,
	game.ErrInsufficientPlayers: CodeInsufficientPlayers,
	game.ErrNotYourTurn:         CodeNotYourTurn,
	game.ErrWrongPhase:          CodeWrongPhase,
	game.ErrInvalidDrop:         CodeInvalidDrop,
	game.ErrNoTableDrop:         CodeNoTableDrop,
	game.ErrIneligibleTableCard: CodeIneligibleTableCard,
	game.ErrCannotCall:          CodeCannotCall,
	game.ErrUnknownPlayer:       CodeNotInGame,
	store.ErrRoomNotFound:       CodeRoomNotFound,
	ErrGameInProgress:           CodeGameInProgress,
	ErrPlayerNameTaken:          CodePlayerAlreadyExists,
	ErrNotInRoom:                CodeNotInRoom,
	ErrNotInGame:                CodeNotInGame,
	ErrParse:                    CodeParseError,
}

// ErrorCode maps an error to its stable wire code. Unrecognized errors,
// including invariant violations, surface as INTERNAL_ERROR.
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeInternalError
}

func newErrorMessage(err error) *OutMessage {
	code := ErrorCode(err)
	message := err.Error()

	// internals stay behind the boundary
	if code == CodeInternalError {
		message = "internal error"
	}

	return &OutMessage{
		Type: "error",
		Data: errorData{
			Code:    code,
			Message: message,
		},
	}
}
