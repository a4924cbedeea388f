package store

import (
	"context"
	"sync"
	"time"

	"furiousfive-server/pkg/game"

	"github.com/sirupsen/logrus"
)

// Memory is an in-memory Store with idle-TTL eviction. Rooms untouched for
// longer than the TTL are swept by a background janitor.
type Memory struct {
	mu           sync.Mutex
	rooms        map[string]*game.State
	lastActivity map[string]time.Time
	ttl          time.Duration
	done         chan struct{}
	closeOnce    sync.Once
}

// NewMemory returns a memory store sweeping idle rooms older than ttl every
// sweepInterval. Close stops the janitor.
func NewMemory(ttl, sweepInterval time.Duration) *Memory {
	m := &Memory{
		rooms:        make(map[string]*game.State),
		lastActivity: make(map[string]time.Time),
		ttl:          ttl,
		done:         make(chan struct{}),
	}

	go m.janitor(sweepInterval)
	return m
}

func (m *Memory) janitor(sweepInterval time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdleRooms()
		case <-m.done:
			return
		}
	}
}

func (m *Memory) evictIdleRooms() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for roomCode, lastActive := range m.lastActivity {
		if now.Sub(lastActive) > m.ttl {
			delete(m.rooms, roomCode)
			delete(m.lastActivity, roomCode)
			logrus.WithField("roomCode", roomCode).Info("evicted idle room")
		}
	}
}

// Close stops the eviction janitor
func (m *Memory) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// CreateRoom stores the state under its room code
func (m *Memory) CreateRoom(_ context.Context, state *game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rooms[state.RoomCode] = state
	m.lastActivity[state.RoomCode] = time.Now()
	return nil
}

// GetRoom returns the state for the room code, or ErrRoomNotFound
func (m *Memory) GetRoom(_ context.Context, roomCode string) (*game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.rooms[roomCode]
	if !ok {
		return nil, ErrRoomNotFound
	}

	m.lastActivity[roomCode] = time.Now()
	return state, nil
}

// UpdateRoom replaces the state for an existing room
func (m *Memory) UpdateRoom(_ context.Context, roomCode string, state *game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[roomCode]; !ok {
		return ErrRoomNotFound
	}

	m.rooms[roomCode] = state
	m.lastActivity[roomCode] = time.Now()
	return nil
}

// DeleteRoom removes the room
func (m *Memory) DeleteRoom(_ context.Context, roomCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, roomCode)
	delete(m.lastActivity, roomCode)
	return nil
}

// ListActiveRooms returns the codes of all live rooms
func (m *Memory) ListActiveRooms(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomCodes := make([]string, 0, len(m.rooms))
	for roomCode := range m.rooms {
		roomCodes = append(roomCodes, roomCode)
	}

	return roomCodes, nil
}
