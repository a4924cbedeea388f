package room

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"furiousfive-server/pkg/game"
)

// ReceivedMessage parses and dispatches one inbound message. It runs on the
// connection's read loop, so a session only ever handles one message at a
// time.
func (s *Session) ReceivedMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.Send(newErrorMessage(ErrParse))
		return
	}

	logrus.WithFields(logrus.Fields{
		"session": s.String(),
		"type":    msg.Type,
	}).Debug("message received")

	switch msg.Type {
	case "ping":
		s.Send(newPong())
	case "room:create":
		s.handleRoomCreate(msg.Data)
	case "room:join":
		s.handleRoomJoin(msg.Data)
	case "player:ready":
		s.handlePlayerReady()
	case "game:start", "round:new":
		s.handleStartRound()
	case "turn:call":
		s.handleCall()
	case "turn:drop":
		s.handleDrop(msg.Data)
	case "turn:drawDeck":
		s.handleDrawDeck()
	case "turn:drawFromTable":
		s.handleDrawFromTable(msg.Data)
	case "game:getState":
		s.handleGetState(msg.Data)
	default:
		s.Send(&OutMessage{
			Type: "error",
			Data: errorData{
				Code:    CodeUnknownMessage,
				Message: fmt.Sprintf("unknown message type: %s", msg.Type),
			},
		})
	}
}

func (s *Session) handleRoomCreate(raw json.RawMessage) {
	var data createRoomData
	if err := json.Unmarshal(raw, &data); err != nil || data.PlayerName == "" {
		s.Send(newErrorMessage(ErrParse))
		return
	}

	s.detach()

	if _, _, err := s.hub.CreateRoom(context.Background(), data.PlayerName, s); err != nil {
		s.Send(newErrorMessage(err))
	}
}

func (s *Session) handleRoomJoin(raw json.RawMessage) {
	var data joinRoomData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomCode == "" || data.PlayerName == "" {
		s.Send(newErrorMessage(ErrParse))
		return
	}

	s.detach()

	if _, _, err := s.hub.JoinRoom(context.Background(), data.RoomCode, data.PlayerName, s); err != nil {
		s.Send(newErrorMessage(err))
	}
}

func (s *Session) handlePlayerReady() {
	s.mutate(ErrNotInGame, func(state *game.State) (*game.State, error) {
		return state.ToggleReady(s.playerID)
	}, nil)
}

func (s *Session) handleStartRound() {
	s.mutate(ErrNotInRoom, func(state *game.State) (*game.State, error) {
		return state.StartRound()
	}, func(prev *game.State) *OutMessage {
		return newNotification("%s started a new round", s.playerName)
	})
}

func (s *Session) handleCall() {
	s.mutate(ErrNotInGame, func(state *game.State) (*game.State, error) {
		return state.SettleOnCall(s.playerID)
	}, func(prev *game.State) *OutMessage {
		return newNotification("%s called", s.playerName)
	})
}

func (s *Session) handleDrop(raw json.RawMessage) {
	var data dropData
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Drop.Cards) == 0 {
		s.Send(newErrorMessage(ErrParse))
		return
	}

	s.mutate(ErrNotInGame, func(state *game.State) (*game.State, error) {
		return state.ApplyDrop(s.playerID, data.Drop)
	}, nil)
}

func (s *Session) handleDrawDeck() {
	s.mutate(ErrNotInGame, func(state *game.State) (*game.State, error) {
		return state.DrawFromDeck(s.playerID)
	}, func(prev *game.State) *OutMessage {
		return newNotification("%s drew from the deck", s.playerName)
	})
}

func (s *Session) handleDrawFromTable(raw json.RawMessage) {
	var data drawFromTableData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.Send(newErrorMessage(ErrParse))
		return
	}

	s.mutate(ErrNotInGame, func(state *game.State) (*game.State, error) {
		return state.DrawFromTable(s.playerID, data.CardIndex)
	}, func(prev *game.State) *OutMessage {
		if prev.TableDrop == nil || data.CardIndex < 0 || data.CardIndex >= len(prev.TableDrop.Cards) {
			return nil
		}

		return newNotification("%s took %s from the table", s.playerName, prev.TableDrop.Cards[data.CardIndex])
	})
}

func (s *Session) handleGetState(raw json.RawMessage) {
	var data getStateData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			s.Send(newErrorMessage(ErrParse))
			return
		}
	}

	roomCode := data.RoomCode
	if roomCode == "" {
		roomCode = s.roomCode
	}

	if roomCode == "" {
		s.Send(newErrorMessage(ErrNotInRoom))
		return
	}

	// a room code plus player ID is a reconnect: rebind the session to the
	// seat and let the broadcast deliver the state
	if data.PlayerID != "" && (s.roomCode != roomCode || s.playerID != data.PlayerID) {
		s.detach()

		if _, err := s.hub.BindSession(context.Background(), roomCode, data.PlayerID, s); err != nil {
			s.Send(newErrorMessage(err))
		}

		return
	}

	state, err := s.hub.RoomState(context.Background(), roomCode)
	if err != nil {
		s.Send(newErrorMessage(err))
		return
	}

	s.Send(newStateUpdate(state))
}

// mutate runs a state transition for the session's bound room and reports
// failures back over the wire
func (s *Session) mutate(unboundErr error, fn func(*game.State) (*game.State, error), notify func(prev *game.State) *OutMessage) {
	if s.roomCode == "" || s.playerID == "" {
		s.Send(newErrorMessage(unboundErr))
		return
	}

	if _, err := s.hub.Mutate(context.Background(), s.roomCode, fn, notify); err != nil {
		s.Send(newErrorMessage(err))
	}
}

// detach removes the session from its current room without starting a grace
// timer
func (s *Session) detach() {
	if s.roomCode == "" {
		return
	}

	if s.playerID != "" {
		s.hub.releaseSeat(s.roomCode, s.playerID, s)
	}

	if r := s.hub.room(s.roomCode); r != nil {
		r.RemoveSession(s)
		s.hub.maybeEvict(r)
	}

	s.roomCode = ""
	s.playerID = ""
	s.playerName = ""
}
