package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"framepruner/internal/logger"
	hub "framepruner/internal/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressWebsocketHandler registers viewers with the hub so they receive
// every progress event until they disconnect.
func ProgressWebsocketHandler(h *hub.Hub, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		h.Register(connection)
		defer h.Unregister(connection)

		logger.Debug("Progress viewer connected from %s", r.RemoteAddr)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Debug("Progress viewer disconnected normally")
				} else {
					logger.Warning("Progress viewer disconnected with error: %v", err)
				}
				return
			}
		}
	}
}
