package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Session is a single websocket connection to the server. A session starts
// unbound; room:create, room:join, or a game:getState rebind gives it a room
// code and a seat.
type Session struct {
	Conn *websocket.Conn
	hub  *Hub

	// Close will gracefully close the connection with the provided reason
	Close chan string

	// CloseError is an error to be sent in the close message
	CloseError error

	send chan *OutMessage

	roomCode   string
	playerID   string
	playerName string
}

// NewSession returns a new session for the websocket connection
func NewSession(conn *websocket.Conn, hub *Hub) *Session {
	return &Session{
		Conn:  conn,
		hub:   hub,
		Close: make(chan string),
		send:  make(chan *OutMessage, 256),
	}
}

// String returns a name suitable for logging
func (s *Session) String() string {
	if s.playerID != "" {
		return fmt.Sprintf("session:%s@%s", s.playerID, s.roomCode)
	}

	if s.Conn != nil {
		return fmt.Sprintf("session:%s", s.Conn.RemoteAddr())
	}

	return "session:detached"
}

// RoomCode returns the room the session is bound to, or an empty string
func (s *Session) RoomCode() string {
	return s.roomCode
}

// PlayerID returns the seat the session is bound to, or an empty string
func (s *Session) PlayerID() string {
	return s.playerID
}

// Send queues a message for delivery. Slow consumers lose messages rather
// than stall the room.
func (s *Session) Send(msg *OutMessage) {
	select {
	case s.send <- msg:
	default:
		logrus.WithField("session", s.String()).Warn("could not send message to session")
	}
}

// SendChan returns the queue the write loop drains
func (s *Session) SendChan() <-chan *OutMessage {
	return s.send
}
