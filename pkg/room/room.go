package room

import (
	"sync"
)

// Room tracks the live sessions for one room code and serializes every
// read-modify-write of the room's stored state. Operations on different
// rooms run independently.
type Room struct {
	code string

	// mu serializes state transitions for this room code
	mu sync.Mutex

	// refs counts in-flight hub operations holding this room; guarded by the
	// hub's lock
	refs int

	sessionsMu sync.RWMutex
	sessions   map[*Session]bool
}

// NewRoom returns a new room for the given code
func NewRoom(code string) *Room {
	return &Room{
		code:     code,
		sessions: make(map[*Session]bool),
	}
}

// Code returns the room code
func (r *Room) Code() string {
	return r.code
}

// Do runs fn while holding the room's transition lock
func (r *Room) Do(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// AddSession attaches a session to the room's broadcast set
func (r *Room) AddSession(s *Session) {
	r.sessionsMu.Lock()
	defer r.sessionsMu.Unlock()
	r.sessions[s] = true
}

// RemoveSession detaches a session and reports whether it was the last one
func (r *Room) RemoveSession(s *Session) bool {
	r.sessionsMu.Lock()
	defer r.sessionsMu.Unlock()
	delete(r.sessions, s)
	return len(r.sessions) == 0
}

// SessionCount returns the number of attached sessions
func (r *Room) SessionCount() int {
	r.sessionsMu.RLock()
	defer r.sessionsMu.RUnlock()
	return len(r.sessions)
}

// Broadcast sends the message to every attached session
func (r *Room) Broadcast(msg *OutMessage) {
	r.sessionsMu.RLock()
	defer r.sessionsMu.RUnlock()
	for s := range r.sessions {
		s.Send(msg)
	}
}
