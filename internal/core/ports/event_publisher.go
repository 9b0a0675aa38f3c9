package ports

import (
	"context"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

// EventPublisher delivers position and phase events to everyone watching a
// delivery. Publishing is fire-and-forget: implementations never buffer for
// absent subscribers and drop events for subscribers that cannot keep up.
type EventPublisher interface {
	// Publish sends the event to the topic of the delivery it concerns.
	Publish(ctx context.Context, event delivery.PositionUpdateEvent) error
}

// EventSubscriber hands out per-delivery event streams.
type EventSubscriber interface {
	// Subscribe returns a channel carrying events for the given delivery,
	// starting with the next published event. No history is replayed.
	// The channel is closed when cancel is called or the topic is retired.
	Subscribe(ctx context.Context, deliveryID kernel.UUID) (events <-chan delivery.PositionUpdateEvent, cancel func(), err error)
}
