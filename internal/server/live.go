package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// handleLive upgrades to a WebSocket and pushes a message per counted rep.
// The current counter state is sent immediately so a client joining
// mid-session starts from the right count.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.app.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(s.app.Snapshot()); err != nil {
		return
	}

	// Reads only serve to detect the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case u := <-updates:
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		}
	}
}
