package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/pinchpop/backend/internal/game"
)

// SelectColorData is the payload for a manual color override.
type SelectColorData struct {
	Color string `json:"color"`
}

// GameHub is the single hub for all games.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go runGameHub(GameHub)
}

func newClientID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("c_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// HandleGameWebSocket upgrades a connection for live game play. The session
// JWT issued at game creation is passed as a query parameter because the
// browser WebSocket API cannot set headers.
func HandleGameWebSocket(c *gin.Context) {
	gameToken := c.Param("token")
	signed := c.Query("jwt")

	if gameToken == "" || signed == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and jwt required"})
		return
	}
	if wsConfig == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server not ready"})
		return
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(wsConfig.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired jwt"})
		return
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid jwt claims"})
		return
	}
	claimToken, _ := claims["game_token"].(string)
	if claimToken != gameToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "jwt is for a different game"})
		return
	}

	if _, err := game.Manager.GetSession(gameToken); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		id:        newClientID(),
		gameToken: gameToken,
		send:      make(chan []byte, 256),
	}

	GameHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runGameHub runs the hub's register and unregister loop.
func runGameHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.rooms[client.gameToken]; !exists {
				h.rooms[client.gameToken] = make(map[string]*Client)
			}
			h.rooms[client.gameToken][client.id] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected to game %s", client.id, client.gameToken)

			// Send the current state so the client can render immediately
			// instead of waiting for the next snapshot tick.
			sess, err := game.Manager.GetSession(client.gameToken)
			if err != nil {
				log.Printf("[WS] Session not found for token %s: %v", client.gameToken, err)
				continue
			}
			sess.Touch()
			state := map[string]interface{}{
				"type":  "game_state",
				"state": sess.LatestSnapshot(),
			}
			data, err := json.Marshal(state)
			if err != nil {
				log.Printf("[WS] Failed to marshal state for game %s: %v", client.gameToken, err)
				continue
			}
			select {
			case client.send <- data:
			default:
				log.Printf("[WS] Client %s send buffer full on connect", client.id)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				if room, exists := h.rooms[client.gameToken]; exists {
					delete(room, client.id)
					if len(room) == 0 {
						delete(h.rooms, client.gameToken)
					}
				}

				log.Printf("[WS] Client %s disconnected from game %s", client.id, client.gameToken)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// readPump reads messages from the client connection.
func (c *Client) readPump() {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for client %s: %v", c.id, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one incoming client message.
func (c *Client) handleMessage(msg WSMessage) {
	sess, err := game.Manager.GetSession(c.gameToken)
	if err != nil {
		c.sendError("Game not found")
		return
	}

	switch msg.Type {
	case "hand_frame":
		var frame game.HandFrame
		if err := json.Unmarshal(msg.Data, &frame); err != nil {
			c.sendError("Invalid hand frame")
			return
		}
		sess.SubmitHandFrame(frame)

	case "select_color":
		var data SelectColorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid color data")
			return
		}
		color, ok := game.ParseColor(data.Color)
		if !ok {
			c.sendError("Unknown color: " + data.Color)
			return
		}
		sess.RequestSelectColor(color)

	case "restart":
		sess.RequestRestart()

	case "get_state":
		state := map[string]interface{}{
			"type":  "game_state",
			"state": sess.LatestSnapshot(),
		}
		d, _ := json.Marshal(state)
		select {
		case c.send <- d:
		default:
			log.Printf("[WS] Client %s send buffer full, dropping state reply", c.id)
		}

	default:
		c.sendError("Unknown message type: " + msg.Type)
	}
}
