package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"furiousfive-server/pkg/game"
	"furiousfive-server/pkg/store"
)

func newTestHub(t *testing.T, gracePeriod time.Duration) *Hub {
	t.Helper()
	st := store.NewMemory(time.Hour, time.Hour)
	t.Cleanup(st.Close)

	h := NewHub(st, gracePeriod)
	t.Cleanup(h.Close)
	return h
}

func TestHub_CreateRoom(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, playerID, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)
	a.NotEmpty(playerID)
	a.Regexp(`^FF-[A-Z0-9]{6}\z`, state.RoomCode)
	a.Equal(game.PhaseLobby, state.Phase)
	a.Equal("alice", state.Players[0].Name)
	a.Equal(playerID, state.Players[0].ID)

	stored, err := h.RoomState(ctx, state.RoomCode)
	a.NoError(err)
	a.Equal(state.Version, stored.Version)
}

func TestHub_JoinRoom(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, _, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)

	joined, playerID, err := h.JoinRoom(ctx, state.RoomCode, "bob", nil)
	a.NoError(err)
	a.Len(joined.Players, 2)
	a.Equal("bob", joined.Players[1].Name)
	a.Equal(playerID, joined.Players[1].ID)

	_, _, err = h.JoinRoom(ctx, "FF-ZZZZZZ", "carol", nil)
	a.Equal(store.ErrRoomNotFound, err)

	_, _, err = h.JoinRoom(ctx, state.RoomCode, "bob", nil)
	a.Equal(ErrPlayerNameTaken, err)
}

func TestHub_JoinRoom_gameInProgress(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, _, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)

	_, _, err = h.JoinRoom(ctx, state.RoomCode, "bob", nil)
	a.NoError(err)

	_, err = h.Mutate(ctx, state.RoomCode, func(s *game.State) (*game.State, error) {
		return s.StartRound()
	}, nil)
	a.NoError(err)

	_, _, err = h.JoinRoom(ctx, state.RoomCode, "carol", nil)
	a.Equal(ErrGameInProgress, err)
}

func TestHub_Mutate(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, playerID, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)

	next, err := h.Mutate(ctx, state.RoomCode, func(s *game.State) (*game.State, error) {
		return s.ToggleReady(playerID)
	}, nil)
	a.NoError(err)
	a.True(next.Players[0].Ready)
	a.Equal(state.Version+1, next.Version)

	stored, err := h.RoomState(ctx, state.RoomCode)
	a.NoError(err)
	a.Equal(next.Version, stored.Version)
}

func TestHub_Mutate_invariantFailureNotPersisted(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, _, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)

	_, err = h.Mutate(ctx, state.RoomCode, func(s *game.State) (*game.State, error) {
		broken := *s
		broken.Deck = broken.Deck[:len(broken.Deck)-1]
		broken.Version++
		return &broken, nil
	}, nil)

	var invariantErr *game.InvariantError
	a.ErrorAs(err, &invariantErr)

	stored, err := h.RoomState(ctx, state.RoomCode)
	a.NoError(err)
	a.Equal(state.Version, stored.Version)
}

func TestHub_gracePeriodDisconnect(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, 20*time.Millisecond)
	ctx := context.Background()

	s := NewSession(nil, h)
	_, _, err := h.CreateRoom(ctx, "alice", s)
	a.NoError(err)
	roomCode, playerID := s.RoomCode(), s.PlayerID()

	h.SessionClosed(s)

	a.Eventually(func() bool {
		state, err := h.RoomState(ctx, roomCode)
		return err == nil && !state.Player(playerID).Connected
	}, time.Second, 10*time.Millisecond)
}

func TestHub_rebindCancelsGracePeriod(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, 200*time.Millisecond)
	ctx := context.Background()

	s := NewSession(nil, h)
	_, _, err := h.CreateRoom(ctx, "alice", s)
	a.NoError(err)
	roomCode, playerID := s.RoomCode(), s.PlayerID()

	h.SessionClosed(s)

	replacement := NewSession(nil, h)
	state, err := h.BindSession(ctx, roomCode, playerID, replacement)
	a.NoError(err)
	a.True(state.Player(playerID).Connected)
	a.Equal(roomCode, replacement.RoomCode())
	a.Equal(playerID, replacement.PlayerID())

	time.Sleep(400 * time.Millisecond)

	stored, err := h.RoomState(ctx, roomCode)
	a.NoError(err)
	a.True(stored.Player(playerID).Connected)
}

func TestHub_BindSession_unknownSeat(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, _, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)

	_, err = h.BindSession(ctx, state.RoomCode, "nope", NewSession(nil, h))
	a.Equal(ErrNotInGame, err)
}

func drainSession(s *Session) {
	for {
		select {
		case <-s.SendChan():
		default:
			return
		}
	}
}

func TestHub_heldRoomSurvivesBackgroundMutation(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	state, playerID, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)
	code := state.RoomCode

	// pin the room the way an in-flight bind does
	r := h.acquireRoom(code)

	// a session-less mutation completes while the room is held; it must not
	// deregister the pinned room
	_, err = h.Mutate(ctx, code, func(s *game.State) (*game.State, error) {
		return s.SetConnected(playerID, false)
	}, nil)
	a.NoError(err)
	a.Same(r, h.room(code))

	// the bind attaches its session to the still-registered room
	s := NewSession(nil, h)
	_, err = h.BindSession(ctx, code, playerID, s)
	a.NoError(err)

	h.releaseRoom(r)
	a.Same(r, h.room(code))

	// later broadcasts reach the session
	drainSession(s)
	_, err = h.Mutate(ctx, code, func(st *game.State) (*game.State, error) {
		return st.ToggleReady(playerID)
	}, nil)
	a.NoError(err)

	select {
	case msg := <-s.SendChan():
		a.Equal("state:update", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the attached session")
	}
}

func TestHub_supersededSessionCloseKeepsSeatAlive(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, 20*time.Millisecond)
	ctx := context.Background()

	s1 := NewSession(nil, h)
	state, _, err := h.CreateRoom(ctx, "alice", s1)
	a.NoError(err)
	roomCode, playerID := state.RoomCode, s1.PlayerID()

	// the player reconnects before the old socket ever closes
	s2 := NewSession(nil, h)
	_, err = h.BindSession(ctx, roomCode, playerID, s2)
	a.NoError(err)

	// the stale close must not arm a grace timer for the live seat
	h.SessionClosed(s1)
	time.Sleep(100 * time.Millisecond)

	stored, err := h.RoomState(ctx, roomCode)
	a.NoError(err)
	a.True(stored.Player(playerID).Connected)

	// closing the live session still starts the grace period
	h.SessionClosed(s2)
	a.Eventually(func() bool {
		st, err := h.RoomState(ctx, roomCode)
		return err == nil && !st.Player(playerID).Connected
	}, time.Second, 10*time.Millisecond)
}

func TestHub_roomRegistryEviction(t *testing.T) {
	a := assert.New(t)
	h := newTestHub(t, time.Minute)
	ctx := context.Background()

	// without a session the registry entry is transient
	state, _, err := h.CreateRoom(ctx, "alice", nil)
	a.NoError(err)
	a.Nil(h.room(state.RoomCode))

	// with a session it sticks around until the session detaches
	s := NewSession(nil, h)
	state2, _, err := h.CreateRoom(ctx, "bob", s)
	a.NoError(err)
	a.NotNil(h.room(state2.RoomCode))

	h.SessionClosed(s)
	a.Nil(h.room(state2.RoomCode))
}
