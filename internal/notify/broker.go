package notify

import (
	"context"
	"log/slog"
	"sync"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

// DefaultSubscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls this many events behind starts losing them.
const DefaultSubscriberBuffer = 16

// Broker is an in-process topic-per-delivery event bus. It implements both
// ports.EventPublisher and ports.EventSubscriber.
//
// Topics are created lazily on first subscribe or publish and retired when
// their last subscriber leaves. There is no replay: a subscriber sees only
// events published after it joined, and events published to a topic with no
// subscribers vanish. Slow subscribers are never allowed to stall the
// publisher; their events are dropped instead.
type Broker struct {
	logger *slog.Logger
	buffer int

	mu     sync.RWMutex
	topics map[string]*topic
	closed bool
}

type topic struct {
	mu          sync.Mutex
	subscribers map[int]chan delivery.PositionUpdateEvent
	nextID      int
}

// NewBroker creates a Broker with the default subscriber buffer.
func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger: logger.With("component", "notify_broker"),
		buffer: DefaultSubscriberBuffer,
		topics: make(map[string]*topic),
	}
}

// Publish sends the event to every current subscriber of the delivery's
// topic. Publishing to a topic nobody watches is a no-op, never an error.
func (b *Broker) Publish(ctx context.Context, event delivery.PositionUpdateEvent) error {
	key := event.DeliveryID.String()

	b.mu.RLock()
	tp := b.topics[key]
	b.mu.RUnlock()

	if tp == nil {
		return nil
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()

	for id, ch := range tp.subscribers {
		select {
		case ch <- event:
		default:
			// Drop rather than block the emitter tick.
			b.logger.WarnContext(ctx, "Dropping event for slow subscriber",
				"delivery_id", key, "subscriber", id)
		}
	}

	return nil
}

// Subscribe attaches to the delivery's topic. The returned channel carries
// events published after this call; cancel detaches and closes it. Cancel is
// idempotent.
func (b *Broker) Subscribe(ctx context.Context, deliveryID kernel.UUID) (<-chan delivery.PositionUpdateEvent, func(), error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, nil, err
	}

	key := deliveryID.String()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, context.Canceled
	}
	tp := b.topics[key]
	if tp == nil {
		tp = &topic{subscribers: make(map[int]chan delivery.PositionUpdateEvent)}
		b.topics[key] = tp
	}
	b.mu.Unlock()

	tp.mu.Lock()
	id := tp.nextID
	tp.nextID++
	ch := make(chan delivery.PositionUpdateEvent, b.buffer)
	tp.subscribers[id] = ch
	tp.mu.Unlock()

	// Whoever removes the entry owns the close, so cancel stays idempotent
	// and cannot race Close into a double close.
	cancel := func() {
		tp.mu.Lock()
		_, live := tp.subscribers[id]
		if live {
			delete(tp.subscribers, id)
		}
		empty := len(tp.subscribers) == 0
		tp.mu.Unlock()

		if !live {
			return
		}
		close(ch)

		if empty {
			b.retire(key, tp)
		}
	}

	return ch, cancel, nil
}

// SubscriberCount reports how many subscribers a delivery's topic has.
func (b *Broker) SubscriberCount(deliveryID kernel.UUID) int {
	b.mu.RLock()
	tp := b.topics[deliveryID.String()]
	b.mu.RUnlock()

	if tp == nil {
		return 0
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	return len(tp.subscribers)
}

// Close shuts down the broker, closing every subscriber channel.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[string]*topic)
	b.mu.Unlock()

	for _, tp := range topics {
		tp.mu.Lock()
		for id, ch := range tp.subscribers {
			delete(tp.subscribers, id)
			close(ch)
		}
		tp.mu.Unlock()
	}
}

// retire removes the topic if it is still the registered one and still empty.
func (b *Broker) retire(key string, tp *topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.topics[key]
	if !ok || current != tp {
		return
	}

	tp.mu.Lock()
	empty := len(tp.subscribers) == 0
	tp.mu.Unlock()

	if empty {
		delete(b.topics, key)
	}
}
