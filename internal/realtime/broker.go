// Package realtime pushes notification payloads to connected clients.
package realtime

import (
	"context"
	"sync"
)

// Broker fans payloads out to a user's live subscriptions.
type Broker interface {
	Publish(ctx context.Context, userID string, payload []byte) error
	// Subscribe returns a channel of payloads for userID. The returned
	// cancel func must be called to release the subscription.
	Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error)
}

const subscriberBuffer = 16

// LocalBroker delivers within this process only.
type LocalBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

// NewLocalBroker creates an empty broker.
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan []byte]struct{})}
}

// Publish drops the payload for subscribers whose buffer is full.
func (b *LocalBroker) Publish(_ context.Context, userID string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[userID] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, userID string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan []byte]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], ch)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Subscribers reports how many live subscriptions userID has.
func (b *LocalBroker) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
