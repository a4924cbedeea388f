package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"furiousfive-server/pkg/game"
	"furiousfive-server/pkg/store"
	"furiousfive-server/pkg/token"
)

// Hub owns the live rooms. It hands out room codes, serializes every state
// transition through the room's lock, fans broadcasts out to attached
// sessions, and runs the disconnect grace timers.
type Hub struct {
	store       store.Store
	gracePeriod time.Duration

	lock             sync.Mutex
	rooms            map[string]*Room
	seats            map[string]*Session
	disconnectTimers map[string]*time.Timer
}

// NewHub returns a new hub backed by the given store
func NewHub(st store.Store, gracePeriod time.Duration) *Hub {
	return &Hub{
		store:            st,
		gracePeriod:      gracePeriod,
		rooms:            make(map[string]*Room),
		seats:            make(map[string]*Session),
		disconnectTimers: make(map[string]*time.Timer),
	}
}

// Store returns the backing room store
func (h *Hub) Store() store.Store {
	return h.store
}

func (h *Hub) room(code string) *Room {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.rooms[code]
}

// acquireRoom resolves the registered room for the code, creating it if
// needed, and pins it against eviction until the matching releaseRoom. A
// caller that got a room through here always holds the registered instance.
func (h *Hub) acquireRoom(code string) *Room {
	h.lock.Lock()
	defer h.lock.Unlock()

	r, ok := h.rooms[code]
	if !ok {
		r = NewRoom(code)
		h.rooms[code] = r
	}

	r.refs++
	return r
}

func (h *Hub) releaseRoom(r *Room) {
	h.lock.Lock()
	defer h.lock.Unlock()

	r.refs--
	if r.refs == 0 && r.SessionCount() == 0 && h.rooms[r.code] == r {
		delete(h.rooms, r.code)
	}
}

// exec runs fn under the room's transition lock
func (h *Hub) exec(code string, fn func(*Room) error) error {
	r := h.acquireRoom(code)
	defer h.releaseRoom(r)

	var err error
	r.Do(func() {
		err = fn(r)
	})

	return err
}

// maybeEvict drops the room from the registry once no sessions remain and no
// operation holds it. The stored state is untouched; the store's own TTL
// handles that.
func (h *Hub) maybeEvict(r *Room) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if r.refs == 0 && r.SessionCount() == 0 && h.rooms[r.code] == r {
		delete(h.rooms, r.code)
	}
}

// CreateRoom allocates a fresh room code, seats the creating player and
// persists the lobby state. A non-nil session is attached and told its seat.
func (h *Hub) CreateRoom(ctx context.Context, playerName string, session *Session) (*game.State, string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := token.RoomCode()
		playerID := uuid.New().String()
		state := game.New(code, playerName, playerID)

		var taken bool
		err := h.exec(code, func(r *Room) error {
			if _, err := h.store.GetRoom(ctx, code); err == nil {
				taken = true
				return nil
			} else if !errors.Is(err, store.ErrRoomNotFound) {
				return err
			}

			if err := h.store.CreateRoom(ctx, state); err != nil {
				return err
			}

			if session != nil {
				session.roomCode = code
				session.playerID = playerID
				session.playerName = playerName
				r.AddSession(session)
				h.bindSeat(code, playerID, session)
				session.Send(&OutMessage{
					Type: "room:created",
					Data: roomBoundData{RoomCode: code, PlayerID: playerID},
				})
				session.Send(newStateUpdate(state))
			}

			return nil
		})
		if err != nil {
			return nil, "", err
		}

		if taken {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"roomCode": code,
			"player":   playerName,
		}).Info("room created")

		return state, playerID, nil
	}

	return nil, "", errors.New("could not allocate a room code")
}

// JoinRoom seats a new player in a lobby-phase room. A non-nil session is
// attached and told its seat before the room hears about the new player.
func (h *Hub) JoinRoom(ctx context.Context, roomCode, playerName string, session *Session) (*game.State, string, error) {
	playerID := uuid.New().String()

	var next *game.State
	err := h.exec(roomCode, func(r *Room) error {
		state, err := h.store.GetRoom(ctx, roomCode)
		if err != nil {
			return err
		}

		if state.Phase != game.PhaseLobby {
			return ErrGameInProgress
		}

		for _, player := range state.Players {
			if player.Name == playerName {
				return ErrPlayerNameTaken
			}
		}

		next, err = state.Join(playerName, playerID)
		if err != nil {
			return err
		}

		if err := h.store.UpdateRoom(ctx, roomCode, next); err != nil {
			return err
		}

		if session != nil {
			session.roomCode = roomCode
			session.playerID = playerID
			session.playerName = playerName
			r.AddSession(session)
			h.bindSeat(roomCode, playerID, session)
			session.Send(&OutMessage{
				Type: "room:joined",
				Data: roomBoundData{RoomCode: roomCode, PlayerID: playerID},
			})
		}

		r.Broadcast(newStateUpdate(next))
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	logrus.WithFields(logrus.Fields{
		"roomCode": roomCode,
		"player":   playerName,
	}).Info("player joined room")

	return next, playerID, nil
}

// RoomState returns the stored state for a room
func (h *Hub) RoomState(ctx context.Context, roomCode string) (*game.State, error) {
	return h.store.GetRoom(ctx, roomCode)
}

// Mutate loads the room's state, applies fn, and persists and broadcasts the
// result. A failed invariant check aborts the transition: nothing is
// persisted and nothing is broadcast. notify, if non-nil, may return an extra
// message built from the pre-transition state to broadcast first.
func (h *Hub) Mutate(ctx context.Context, roomCode string, fn func(*game.State) (*game.State, error), notify func(prev *game.State) *OutMessage) (*game.State, error) {
	var next *game.State
	err := h.exec(roomCode, func(r *Room) error {
		state, err := h.store.GetRoom(ctx, roomCode)
		if err != nil {
			return err
		}

		next, err = fn(state)
		if err != nil {
			return err
		}

		if err := next.CheckInvariants(); err != nil {
			logrus.WithError(err).WithField("roomCode", roomCode).Error("refusing to persist state")
			return err
		}

		if err := h.store.UpdateRoom(ctx, roomCode, next); err != nil {
			return err
		}

		if notify != nil {
			if msg := notify(state); msg != nil {
				r.Broadcast(msg)
			}
		}

		r.Broadcast(newStateUpdate(next))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return next, nil
}

// BindSession attaches a session to an existing seat. This is the reconnect
// path: the grace timer is cancelled, the player is marked connected again,
// and the room sees the refreshed state.
func (h *Hub) BindSession(ctx context.Context, roomCode, playerID string, session *Session) (*game.State, error) {
	var next *game.State
	err := h.exec(roomCode, func(r *Room) error {
		state, err := h.store.GetRoom(ctx, roomCode)
		if err != nil {
			return err
		}

		player := state.Player(playerID)
		if player == nil {
			return ErrNotInGame
		}

		session.roomCode = roomCode
		session.playerID = playerID
		session.playerName = player.Name
		r.AddSession(session)
		h.bindSeat(roomCode, playerID, session)
		h.cancelDisconnect(roomCode, playerID)

		next, err = state.SetConnected(playerID, true)
		if err != nil {
			return err
		}

		if err := h.store.UpdateRoom(ctx, roomCode, next); err != nil {
			return err
		}

		r.Broadcast(newStateUpdate(next))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"roomCode": roomCode,
		"playerId": playerID,
	}).Info("session rebound to seat")

	return next, nil
}

// SessionClosed detaches a closed session and starts the grace timer for its
// seat. The player stays marked connected until the timer fires; a rebind in
// time cancels it. Closing a session whose seat was taken over by a newer
// session detaches it without touching the seat.
func (h *Hub) SessionClosed(s *Session) {
	roomCode, playerID := s.roomCode, s.playerID
	if roomCode == "" {
		return
	}

	if r := h.room(roomCode); r != nil {
		r.RemoveSession(s)
		h.maybeEvict(r)
	}

	if playerID != "" && h.releaseSeat(roomCode, playerID, s) {
		h.scheduleDisconnect(roomCode, playerID)
	}

	logrus.WithFields(logrus.Fields{
		"roomCode": roomCode,
		"playerId": playerID,
	}).Debug("session closed")
}

// bindSeat records s as the seat's current session
func (h *Hub) bindSeat(roomCode, playerID string, s *Session) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.seats[disconnectKey(roomCode, playerID)] = s
}

// releaseSeat clears the seat mapping if s still holds it, reporting whether
// it did. A superseded session no longer owns its old seat.
func (h *Hub) releaseSeat(roomCode, playerID string, s *Session) bool {
	key := disconnectKey(roomCode, playerID)

	h.lock.Lock()
	defer h.lock.Unlock()

	if h.seats[key] != s {
		return false
	}

	delete(h.seats, key)
	return true
}

func disconnectKey(roomCode, playerID string) string {
	return roomCode + "/" + playerID
}

func (h *Hub) scheduleDisconnect(roomCode, playerID string) {
	key := disconnectKey(roomCode, playerID)

	h.lock.Lock()
	defer h.lock.Unlock()

	if t, ok := h.disconnectTimers[key]; ok {
		t.Stop()
	}

	h.disconnectTimers[key] = time.AfterFunc(h.gracePeriod, func() {
		h.markDisconnected(roomCode, playerID)
	})
}

func (h *Hub) cancelDisconnect(roomCode, playerID string) {
	key := disconnectKey(roomCode, playerID)

	h.lock.Lock()
	defer h.lock.Unlock()

	if t, ok := h.disconnectTimers[key]; ok {
		t.Stop()
		delete(h.disconnectTimers, key)
	}
}

func (h *Hub) markDisconnected(roomCode, playerID string) {
	h.lock.Lock()
	delete(h.disconnectTimers, disconnectKey(roomCode, playerID))
	h.lock.Unlock()

	_, err := h.Mutate(context.Background(), roomCode, func(state *game.State) (*game.State, error) {
		return state.SetConnected(playerID, false)
	}, nil)

	if err != nil {
		// the room may have been evicted during the grace period
		if !errors.Is(err, store.ErrRoomNotFound) {
			logrus.WithError(err).WithFields(logrus.Fields{
				"roomCode": roomCode,
				"playerId": playerID,
			}).Warn("could not mark player disconnected")
		}
		return
	}

	logrus.WithFields(logrus.Fields{
		"roomCode": roomCode,
		"playerId": playerID,
	}).Info("player disconnected after grace period")
}

// Close stops all pending disconnect timers
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()

	for key, t := range h.disconnectTimers {
		t.Stop()
		delete(h.disconnectTimers, key)
	}
}
