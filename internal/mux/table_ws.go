package mux

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"ohpshaw-server/pkg/room"
)

// getWS upgrades to a websocket that speaks the line protocol, one line per text frame
func (m *Mux) getWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		client := room.NewClient(room.NewWebSocketConn(conn))
		logrus.WithField("client", client.String()).WithField("remoteAddr", remoteAddr(r)).Debug("websocket connected")
		m.table.AddClient(client)
	}
}
