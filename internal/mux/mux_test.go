package mux

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiousfive-server/pkg/game"
	"furiousfive-server/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := store.NewMemory(time.Hour, time.Hour)
	t.Cleanup(st.Close)

	m := NewMux("test-version", st)
	t.Cleanup(m.Hub().Close)

	ts := httptest.NewServer(m)
	t.Cleanup(ts.Close)
	return ts
}

func doGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}) int {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if respObj != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(respObj))
	}

	return resp.StatusCode
}

func doPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}) int {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if respObj != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(respObj))
	}

	return resp.StatusCode
}

func TestMux_getHealth(t *testing.T) {
	ts := newTestServer(t)

	var resp healthResponse
	assert.Equal(t, http.StatusOK, doGet(t, ts, "/health", &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "test-version", resp.Version)
}

func TestMux_roomsAPI(t *testing.T) {
	a := assert.New(t)
	ts := newTestServer(t)

	var created roomResponse
	a.Equal(http.StatusCreated, doPost(t, ts, "/api/rooms", roomRequest{PlayerName: "alice"}, &created))
	a.True(created.Success)
	a.Regexp(`^FF-[A-Z0-9]{6}\z`, created.RoomCode)
	a.NotEmpty(created.PlayerID)
	a.Equal(game.PhaseLobby, created.GameState.Phase)

	var fetched roomResponse
	a.Equal(http.StatusOK, doGet(t, ts, "/api/rooms/"+created.RoomCode, &fetched))
	a.True(fetched.Success)
	a.Len(fetched.GameState.Players, 1)

	var joined roomResponse
	a.Equal(http.StatusOK, doPost(t, ts, "/api/rooms/"+created.RoomCode+"/join", roomRequest{PlayerName: "bob"}, &joined))
	a.True(joined.Success)
	a.NotEmpty(joined.PlayerID)
	a.Len(joined.GameState.Players, 2)

	// duplicate player name
	a.Equal(http.StatusConflict, doPost(t, ts, "/api/rooms/"+created.RoomCode+"/join", roomRequest{PlayerName: "bob"}, nil))

	// unknown room
	a.Equal(http.StatusNotFound, doGet(t, ts, "/api/rooms/FF-ZZZZZZ", nil))
	a.Equal(http.StatusNotFound, doPost(t, ts, "/api/rooms/FF-ZZZZZZ/join", roomRequest{PlayerName: "carol"}, nil))

	// malformed requests
	a.Equal(http.StatusBadRequest, doPost(t, ts, "/api/rooms", roomRequest{}, nil))
}

func TestMux_roomsAPIRequiresJSON(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/rooms", "text/plain", bytes.NewReader([]byte("hi")))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
