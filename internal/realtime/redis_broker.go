package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces per-user pub/sub channels.
const ChannelPrefix = "notifications:"

// RedisBroker relays payloads through Redis pub/sub so every API replica
// can serve a user's stream.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker wraps client.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, userID string, payload []byte) error {
	return b.client.Publish(ctx, ChannelPrefix+userID, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error) {
	pubsub := b.client.Subscribe(ctx, ChannelPrefix+userID)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}
