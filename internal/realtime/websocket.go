package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// WebSocketConn serialises writes to a websocket connection.
type WebSocketConn struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

func (w *WebSocketConn) WriteText(msg []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteMessage(websocket.TextMessage, msg)
}

func (w *WebSocketConn) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteText(b)
}

// Frame is a control message sent by a websocket client.
type Frame struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
}

const (
	FrameJoinProject  = "join-project"
	FrameLeaveProject = "leave-project"
	FramePing         = "ping"
	FramePong         = "pong"
)

// WritePump forwards hub messages to the connection until Send is closed or
// a write fails.
func (c *Client) WritePump() error {
	for msg := range c.Send {
		if err := c.Conn.WriteText(msg); err != nil {
			return err
		}
	}
	return nil
}
