package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"

	"furiousfive-server/internal/config"
	"furiousfive-server/pkg/room"
	"furiousfive-server/pkg/store"
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	hub     *room.Hub
}

// NewMux returns a new HTTP mux backed by the given room store
func NewMux(version string, st store.Store) *Mux {
	hub := room.NewHub(st, config.Instance().DisconnectGracePeriod())

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		hub:     hub,
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodGet).Path("/ws").Handler(this.getWS())

	// HTTP fallback for clients without a socket yet
	r.Methods(http.MethodPost).Path("/api/rooms").Handler(this.postRooms())
	r.Methods(http.MethodPost).Path("/api/rooms/{code:FF-[A-Z0-9]{6}}/join").Handler(this.postRoomsCodeJoin())
	r.Methods(http.MethodGet).Path("/api/rooms/{code:FF-[A-Z0-9]{6}}").Handler(this.getRoomsCode())

	return this
}

// Hub returns the room hub
func (m *Mux) Hub() *room.Hub {
	return m.hub
}
