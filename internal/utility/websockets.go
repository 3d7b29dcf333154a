package utility

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"Wellpulse_V0.1/internal/advice"
)

// Hub holds the active client connections, one per user. The app keeps a
// socket open while foregrounded and refreshes its advice view on push.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow CORS for development
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// RegisterClient attaches a new connection for the user, replacing a stale
// one if the app reconnected.
func (h *Hub) RegisterClient(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[userID]; ok {
		old.Close()
	}
	h.clients[userID] = conn
	log.Info().Str("user_id", userID).Msg("WebSocket client connected")
}

// UnregisterClient drops the user's connection.
func (h *Hub) UnregisterClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket client disconnected")
	}
}

// adviceReadyEvent is the push payload; the app refetches the advice body
// over HTTP, the event only signals that it exists.
type adviceReadyEvent struct {
	Type      string `json:"type"`
	Domain    string `json:"domain"`
	Timestamp string `json:"timestamp"`
}

// NotifyAdviceReady tells the user's live connection that today's advice is
// available. Users without an open socket are skipped silently.
func (h *Hub) NotifyAdviceReady(userID string, domain advice.Domain) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[userID]
	if !ok {
		return
	}

	msg, _ := json.Marshal(adviceReadyEvent{
		Type:      "ADVICE_READY",
		Domain:    string(domain),
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send WS message, removing client")
		conn.Close()
		delete(h.clients, userID)
	}
}
