package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"ohpshaw-server/pkg/room"
)

// Table is the game served over HTTP
type Table interface {
	Status() room.Status
	AddClient(client *room.Client)
}

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	table   Table
}

// NewMux returns a new HTTP mux
func NewMux(version string, table Table) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		table:   table,
	}

	r := this.Router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, nil)
	})

	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodGet).Path("/game").Handler(this.getGame())
	r.Methods(http.MethodGet).Path("/ws").Handler(this.getWS())

	return this
}

func (m *Mux) getGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.table.Status())
	}
}
