package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	EventNotification       = "notification"
	EventNewBid             = "new-bid"
	EventFreelancerSelected = "freelancer-selected"
)

// Publisher pushes an event to every subscriber of a topic. Delivery is
// at-most-once; callers must not depend on it for correctness.
type Publisher interface {
	Publish(ctx context.Context, topic, event string, payload any) error
}

// Envelope is the frame written to websocket subscribers.
type Envelope struct {
	Topic string          `json:"topic"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func UserTopic(id uuid.UUID) string {
	return "user-" + id.String()
}

func ProjectTopic(id uuid.UUID) string {
	return "project-" + id.String()
}

func encode(topic, event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Topic: topic, Event: event, Data: data})
}
