package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubPublishReachesTopicSubscribers(t *testing.T) {
	t.Parallel()

	h := runHub(t)
	project := uuid.New()
	watcher := NewClient(uuid.New(), nil)
	bystander := NewClient(uuid.New(), nil)
	h.RegisterClient(watcher)
	h.RegisterClient(bystander)
	h.Subscribe(watcher, ProjectTopic(project))
	h.Subscribe(bystander, UserTopic(bystander.UserID))

	if err := h.Publish(context.Background(), ProjectTopic(project), EventNewBid, map[string]string{"bid": "b1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(receive(t, watcher), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Topic != ProjectTopic(project) || env.Event != EventNewBid {
		t.Fatalf("envelope = %+v", env)
	}
	if string(env.Data) != `{"bid":"b1"}` {
		t.Fatalf("data = %s", env.Data)
	}
	if n := len(bystander.Send); n != 0 {
		t.Fatalf("bystander received %d messages, want 0", n)
	}
}

func TestHubDeliverDropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	h := NewHub()
	c := &Client{ID: "slow", UserID: uuid.New(), Send: make(chan []byte, 1)}
	h.Subscribe(c, "user-x")

	if n := h.Deliver("user-x", []byte("one")); n != 1 {
		t.Fatalf("first deliver = %d, want 1", n)
	}
	if n := h.Deliver("user-x", []byte("two")); n != 0 {
		t.Fatalf("second deliver = %d, want 0", n)
	}
	if got := string(<-c.Send); got != "one" {
		t.Fatalf("buffered = %q, want one", got)
	}
}

func TestHubUnregisterRemovesSubscriptions(t *testing.T) {
	t.Parallel()

	h := runHub(t)
	c := NewClient(uuid.New(), nil)
	h.RegisterClient(c)
	h.Subscribe(c, UserTopic(c.UserID))
	h.Subscribe(c, "project-1")

	h.UnregisterClient(c)

	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers(UserTopic(c.UserID)) != 0 || h.Subscribers("project-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client still subscribed after unregister")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := <-c.Send; ok {
		t.Fatal("expected Send to be closed")
	}

	h.Subscribe(c, "project-2")
	if n := h.Subscribers("project-2"); n != 0 {
		t.Fatalf("subscribers after late subscribe = %d, want 0", n)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	t.Parallel()

	h := NewHub()
	c := NewClient(uuid.New(), nil)
	h.Subscribe(c, "project-1")
	h.Unsubscribe(c, "project-1")

	if n := h.Deliver("project-1", []byte("x")); n != 0 {
		t.Fatalf("deliver after unsubscribe = %d, want 0", n)
	}
}

func TestHubRegisterAfterStopClosesClient(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient(uuid.New(), nil)
	h.RegisterClient(c)
	h.Subscribe(c, UserTopic(c.UserID))

	if n := h.Subscribers(UserTopic(c.UserID)); n != 0 {
		t.Fatalf("subscribers after stop = %d, want 0", n)
	}
	if _, ok := <-c.Send; ok {
		t.Fatal("expected Send to be closed")
	}
	h.UnregisterClient(c)
}
