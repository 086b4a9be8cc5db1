package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client represents a connected WebSocket client watching one game.
type Client struct {
	conn      *websocket.Conn
	id        string
	gameToken string
	send      chan []byte
}

// Hub maintains the set of active clients grouped by game token. A game can
// have several clients at once (extra tabs, spectators); every client in the
// room receives the same frames.
type Hub struct {
	clients    map[string]*Client            // client id -> Client
	rooms      map[string]map[string]*Client // game token -> client id -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// BroadcastToGame sends an already-marshaled message to every client watching
// a game. The game loop marshals each frame once, so the hub only fans out
// bytes.
func (h *Hub) BroadcastToGame(token string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.rooms[token]; exists {
		for _, client := range room {
			select {
			case client.send <- message:
			default:
				// Client's buffer is full
				log.Printf("[WS] Client %s send buffer full for game %s, dropping message", client.id, token)
			}
		}
	}
}

// BroadcastAll sends an already-marshaled message to every connected client,
// regardless of game. Used for leaderboard updates.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- message:
		default:
			log.Printf("[WS] Client %s send buffer full, dropping broadcast", client.id)
		}
	}
}

// RoomSize returns the number of clients watching a game.
func (h *Hub) RoomSize(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed during cleanup. Best-effort close frame;
				// ignore errors (conn may already be closed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Client %s send buffer full, dropping error", c.id)
	}
}
