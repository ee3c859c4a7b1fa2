package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
)

type RealtimeHandler struct {
	Hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

// Upgrade rejects plain HTTP requests to the websocket endpoint.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler keeps one live channel per connection. The caller is
// subscribed to its own user topic and may join project topics.
func (h *RealtimeHandler) WebSocketHandler(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		log.Println("[ws] connection without resolved user")
		_ = c.Close()
		return
	}

	client := realtime.NewClient(userID, realtime.NewWebSocketConn(c))
	h.Hub.RegisterClient(client)
	h.Hub.Subscribe(client, realtime.UserTopic(userID))
	log.Printf("[ws] user %s connected as %s", userID, client.ID)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("[ws] user %s disconnected", userID)
	}()

	go func() {
		if err := client.WritePump(); err != nil {
			log.Printf("[ws] write error for %s: %v", client.ID, err)
		}
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error for %s: %v", client.ID, err)
			}
			return
		}

		var frame realtime.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		h.handleFrame(client, frame)
	}
}

func (h *RealtimeHandler) handleFrame(client *realtime.Client, frame realtime.Frame) {
	switch frame.Type {
	case realtime.FramePing:
		if err := client.Conn.WriteJSON(realtime.Frame{Type: realtime.FramePong}); err != nil {
			log.Printf("[ws] pong to %s: %v", client.ID, err)
		}
	case realtime.FrameJoinProject, realtime.FrameLeaveProject:
		projectID, err := uuid.Parse(frame.ProjectID)
		if err != nil {
			return
		}
		topic := realtime.ProjectTopic(projectID)
		if frame.Type == realtime.FrameJoinProject {
			h.Hub.Subscribe(client, topic)
		} else {
			h.Hub.Unsubscribe(client, topic)
		}
	}
}
