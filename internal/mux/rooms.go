package mux

import (
	"errors"
	"net/http"

	gmux "github.com/gorilla/mux"

	"furiousfive-server/pkg/game"
	"furiousfive-server/pkg/room"
	"furiousfive-server/pkg/store"
)

type roomRequest struct {
	PlayerName string `json:"playerName"`
}

type roomResponse struct {
	Success   bool        `json:"success"`
	RoomCode  string      `json:"roomCode,omitempty"`
	PlayerID  string      `json:"playerId,omitempty"`
	GameState *game.State `json:"gameState"`
}

func (m *Mux) postRooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload roomRequest
		if !decodeRequest(w, r, &payload) {
			return
		}

		if payload.PlayerName == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("playerName is required"))
			return
		}

		state, playerID, err := m.hub.CreateRoom(r.Context(), payload.PlayerName, nil)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, roomResponse{
			Success:   true,
			RoomCode:  state.RoomCode,
			PlayerID:  playerID,
			GameState: state,
		})
	}
}

func (m *Mux) postRoomsCodeJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload roomRequest
		if !decodeRequest(w, r, &payload) {
			return
		}

		if payload.PlayerName == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("playerName is required"))
			return
		}

		roomCode := gmux.Vars(r)["code"]
		state, playerID, err := m.hub.JoinRoom(r.Context(), roomCode, payload.PlayerName, nil)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, roomResponse{
			Success:   true,
			RoomCode:  roomCode,
			PlayerID:  playerID,
			GameState: state,
		})
	}
}

func (m *Mux) getRoomsCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := gmux.Vars(r)["code"]
		state, err := m.hub.RoomState(r.Context(), roomCode)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, roomResponse{
			Success:   true,
			RoomCode:  roomCode,
			GameState: state,
		})
	}
}

func writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		writeJSONError(w, http.StatusNotFound, err)
	case errors.Is(err, room.ErrGameInProgress),
		errors.Is(err, room.ErrPlayerNameTaken),
		errors.Is(err, game.ErrRoomFull):
		writeJSONError(w, http.StatusConflict, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}
