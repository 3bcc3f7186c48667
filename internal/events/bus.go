package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"askroom/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Handler reacts to a room event.
type Handler func(ctx context.Context, event Event) error

// EventBus fans room events out to every running instance.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(handler Handler)
	Start() error
	Stop() error
}

// RedisEventBus implements EventBus using Redis Pub/Sub. Each room gets its
// own channel so instances only pay for traffic they can route anyway.
type RedisEventBus struct {
	client   *redis.Client
	log      *logger.Logger
	handlers []Handler
	pubsub   *redis.PubSub
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
}

func NewRedisEventBus(client *redis.Client, log *logger.Logger) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client: client,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

func channelFor(roomCode string) string {
	return fmt.Sprintf("room:%s:events", roomCode)
}

func (b *RedisEventBus) Start() error {
	b.mu.Lock()
	b.running = true
	b.pubsub = b.client.PSubscribe(b.ctx, "room:*:events")
	b.mu.Unlock()
	go b.listen()
	return nil
}

func (b *RedisEventBus) Stop() error {
	b.cancel()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	if b.pubsub != nil {
		return b.pubsub.Close()
	}
	return nil
}

func (b *RedisEventBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return fmt.Errorf("event bus not started")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.client.Publish(ctx, channelFor(event.RoomCode), data).Err()
}

func (b *RedisEventBus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *RedisEventBus) listen() {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg := <-ch:
			if msg == nil {
				continue
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				if b.log != nil {
					b.log.Errorf("event bus: dropping malformed payload on %s: %v", msg.Channel, err)
				}
				continue
			}
			b.dispatch(event)
		}
	}
}

func (b *RedisEventBus) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	// Handlers run inline: events for a room arrive serialized on the
	// pub/sub channel, and snapshots rebuilt from them must keep that
	// order all the way to subscribers.
	for _, handler := range handlers {
		if err := handler(b.ctx, event); err != nil && b.log != nil {
			b.log.Errorf("event bus: handler failed for %s: %v", event.Type, err)
		}
	}
}
