package testkit

import (
	"context"
	"sync"
)

// Event is one call recorded by Publisher.
type Event struct {
	Topic   string
	Event   string
	Payload any
}

// Publisher records every publish. Setting Err makes each call fail after
// recording.
type Publisher struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, topic, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Topic: topic, Event: event, Payload: payload})
	return p.Err
}

func (p *Publisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// On returns the recorded events for one topic and event name.
func (p *Publisher) On(topic, event string) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Topic == topic && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
