package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pinchpop/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartEventSubscriber subscribes to the game_events channel and relays
// cross-instance events to connected clients. Per-session frames go straight
// from the game loop to the hub; only events that must reach clients on any
// instance (leaderboard changes, expiry notices) travel through Redis.
func StartEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "game_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] game_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			gameToken, _ := payload["game_token"].(string)

			switch typeStr {
			case "leaderboard_updated":
				out := map[string]interface{}{
					"type":         "leaderboard_updated",
					"display_name": payload["display_name"],
					"score":        payload["score"],
				}
				data, err := json.Marshal(out)
				if err != nil {
					log.Printf("[WS] failed to marshal leaderboard event: %v", err)
					continue
				}
				GameHub.BroadcastAll(data)

			case "session_expired":
				if gameToken == "" {
					log.Printf("[WS] session_expired event without game_token")
					continue
				}
				if size := GameHub.RoomSize(gameToken); size == 0 {
					log.Printf("[WS] no room for game %s; expiry notice will not be broadcast", gameToken)
					continue
				}
				out := map[string]interface{}{
					"type":    "session_expired",
					"message": payload["message"],
				}
				data, err := json.Marshal(out)
				if err != nil {
					log.Printf("[WS] failed to marshal expiry event: %v", err)
					continue
				}
				GameHub.BroadcastToGame(gameToken, data)

			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
