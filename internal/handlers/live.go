package handlers

import (
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"

	"roadserver/internal/logger"
	"roadserver/internal/services/websocket"
)

var upgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler upgrades the connection and streams newly saved detection
// events to the client until it disconnects.
func LiveHandler(hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		hub.Register(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				hub.Unregister(connection)
				break
			}
		}
	}
}
