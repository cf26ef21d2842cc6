package events

import (
	"context"
	"sync"

	"github.com/api-sage/cashflow-ledger/src/internal/logger"
)

const DefaultBufferSize = 64

// Broker fans events out to in-process subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]subscription
	nextID int
	buffer int
	closed bool
}

type subscription struct {
	accountID string
	ch        chan Event
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Broker{subs: make(map[int]subscription), buffer: buffer}
}

// Subscribe returns events for accountID, or for every account when it is
// empty. Calling cancel closes the channel.
func (b *Broker) Subscribe(accountID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{accountID: accountID, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

func (b *Broker) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.accountID != "" && sub.accountID != event.AccountID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			logger.Warn("event subscriber lagging, event dropped", logger.Fields{
				"accountId": event.AccountID,
				"eventType": event.Type,
			})
		}
	}

	return nil
}

func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
