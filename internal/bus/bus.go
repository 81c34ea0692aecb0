// Package bus implements the typed message broadcast shared by the
// socket listeners, the store writer, the webhook dispatcher, the
// printer, and the DHT forwarder.
package bus

import (
	"log"
	"sync"

	"github.com/sifis-home/netspot-control/internal/messages"
)

// Capacity is the fixed per-subscriber buffer depth. Publishers never
// block on a slow subscriber; once a subscriber's buffer is full, its
// oldest undelivered message is dropped to make room for the new one.
const Capacity = 16

// Bus fans out messages.Message values to any number of subscribers.
// Zero value is not usable; construct with New.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan messages.Message
	next int
}

// New returns an empty bus ready to accept subscribers and publishers.
func New() *Bus {
	return &Bus{subs: make(map[int]chan messages.Message)}
}

// Subscription is a handle returned by Subscribe. Consumers range over
// C until it is closed by Unsubscribe, or read until the channel is
// drained after an Unsubscribe call.
type Subscription struct {
	C    <-chan messages.Message
	id   int
	bus  *Bus
}

// Subscribe registers a new consumer and returns its channel. Create
// subscriptions for consumers that must not miss startup messages
// (the store writer, the dispatcher) before any producer begins
// publishing.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan messages.Message, Capacity)
	b.subs[id] = ch
	return &Subscription{C: ch, id: id, bus: b}
}

// Unsubscribe removes the subscription and closes its channel. Safe
// to call once; calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	ch, ok := s.bus.subs[s.id]
	if ok {
		delete(s.bus.subs, s.id)
	}
	s.bus.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Publish delivers msg to every current subscriber. A subscriber whose
// buffer is full has its oldest queued message dropped so the new one
// still gets through; no publisher ever blocks here.
func (b *Bus) Publish(msg messages.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			select {
			case <-ch:
				log.Printf("bus: subscriber lagging, dropped oldest message")
			default:
			}
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

// SubscriberCount reports how many consumers currently hold a live
// subscription.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
