package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers are read-only; cross-origin dashboards are fine.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WatchHandler streams lobby and match lifecycle events over a websocket
type WatchHandler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewWatchHandler creates a new websocket observer handler
func NewWatchHandler(hub *Hub, logger *slog.Logger) *WatchHandler {
	return &WatchHandler{
		hub:    hub,
		logger: logger,
	}
}

// Watch handles GET /api/watch
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(events)
	defer func() { _ = conn.Close() }()

	// Drain the read side so close frames and pongs are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
