package room

import (
	"encoding/json"
	"fmt"

	"furiousfive-server/pkg/game"
)

// Message is the inbound wire envelope
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutMessage is the outbound wire envelope
type OutMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inbound payloads

type createRoomData struct {
	PlayerName string `json:"playerName"`
}

type joinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type dropData struct {
	Drop game.Drop `json:"drop"`
}

type drawFromTableData struct {
	CardIndex int `json:"cardIndex"`
}

type getStateData struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// outbound payloads

type roomBoundData struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type notificationData struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newStateUpdate(state *game.State) *OutMessage {
	return &OutMessage{
		Type: "state:update",
		Data: state,
	}
}

func newNotification(format string, a ...interface{}) *OutMessage {
	return &OutMessage{
		Type: "notification",
		Data: notificationData{
			Message: fmt.Sprintf(format, a...),
			Type:    "info",
		},
	}
}

func newPong() *OutMessage {
	return &OutMessage{
		Type: "pong",
		Data: struct{}{},
	}
}
