package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

const sendBuffer = 256

type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *WebSocketConn
	Send   chan []byte

	closed bool // guarded by Hub.mu
}

func NewClient(userID uuid.UUID, conn *WebSocketConn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Hub keeps the connected clients of this process and the topics they
// subscribed to.
type Hub struct {
	clients    map[string]*Client
	topics     map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		topics:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// RegisterClient and UnregisterClient return immediately once Run has stopped.
// A client registered after that is closed straight away.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		h.mu.Lock()
		h.drop(client)
		h.mu.Unlock()
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe adds client to topic. It is a no-op for a client that has
// already been unregistered.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.closed {
		return
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[string]*Client)
		h.topics[topic] = subs
	}
	subs[client.ID] = client
}

func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromTopic(client.ID, topic)
}

func (h *Hub) removeFromTopic(clientID, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Subscribers returns how many clients currently listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Deliver hands msg to every subscriber of topic and returns how many took
// it. A subscriber whose buffer is full misses the message.
func (h *Hub) Deliver(topic string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, client := range h.topics[topic] {
		select {
		case client.Send <- msg:
			n++
		default:
			log.Printf("[realtime] dropping %s message for client %s: buffer full", topic, client.ID)
		}
	}
	return n
}

// Publish delivers to subscribers connected to this process only.
func (h *Hub) Publish(_ context.Context, topic, event string, payload any) error {
	msg, err := encode(topic, event, payload)
	if err != nil {
		return err
	}
	h.Deliver(topic, msg)
	return nil
}

// Run services registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if !client.closed {
				h.clients[client.ID] = client
			}
			h.mu.Unlock()
			log.Printf("[realtime] client registered: %s (user %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			log.Printf("[realtime] client unregistered: %s", client.ID)

		case <-ctx.Done():
			h.mu.Lock()
			for _, client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop must be called with h.mu held.
func (h *Hub) drop(client *Client) {
	if client.closed {
		return
	}
	client.closed = true
	delete(h.clients, client.ID)
	for topic := range h.topics {
		h.removeFromTopic(client.ID, topic)
	}
	close(client.Send)
}
