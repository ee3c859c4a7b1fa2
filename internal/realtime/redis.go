package realtime

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a new Redis client.
func NewRedis(addr, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	log.Printf("[realtime] redis client created (addr: %s)", addr)
	return rdb
}

// Broker fans events out through Redis pub/sub so every API instance can
// reach its own websocket subscribers.
type Broker struct {
	rdb    *redis.Client
	hub    *Hub
	prefix string

	ready     chan struct{}
	readyOnce sync.Once
}

func NewBroker(rdb *redis.Client, hub *Hub, prefix string) *Broker {
	return &Broker{
		rdb:    rdb,
		hub:    hub,
		prefix: prefix,
		ready:  make(chan struct{}),
	}
}

func (b *Broker) Publish(ctx context.Context, topic, event string, payload any) error {
	msg, err := encode(topic, event, payload)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.prefix+topic, msg).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Ready is closed once Run holds a confirmed subscription.
func (b *Broker) Ready() <-chan struct{} {
	return b.ready
}

// Run relays every message on the prefixed channels into the local hub until
// ctx is done.
func (b *Broker) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, b.prefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	b.readyOnce.Do(func() { close(b.ready) })
	log.Printf("[realtime] relaying %s* into hub", b.prefix)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(m.Channel, b.prefix)
			b.hub.Deliver(topic, []byte(m.Payload))
		}
	}
}
