// Package redisfanout bridges the per-delivery event fan-out across process
// boundaries using Redis pub/sub. Each delivery maps to one channel, so the
// no-replay, no-buffering semantics of the in-process broker carry over:
// Redis drops messages published while nobody is subscribed.
package redisfanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

const channelPrefix = "delivery:"

// eventEnvelope is the wire form of a PositionUpdateEvent on Redis.
type eventEnvelope struct {
	DeliveryID string    `json:"deliveryId"`
	Timestamp  time.Time `json:"timestamp"`
	Latitude   *float64  `json:"lat,omitempty"`
	Longitude  *float64  `json:"lng,omitempty"`
	Phase      *string   `json:"phase,omitempty"`
	IntervalMs int64     `json:"intervalMs"`
}

// Fanout publishes and subscribes delivery events over Redis pub/sub.
// Implements ports.EventPublisher and ports.EventSubscriber.
type Fanout struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a Fanout on the given Redis client.
func New(client *redis.Client, logger *slog.Logger) *Fanout {
	return &Fanout{
		client: client,
		logger: logger.With("component", "redis_fanout"),
	}
}

// Publish serializes the event and publishes it to the delivery's channel.
func (f *Fanout) Publish(ctx context.Context, event delivery.PositionUpdateEvent) error {
	envelope := eventEnvelope{
		DeliveryID: event.DeliveryID.String(),
		Timestamp:  event.Timestamp,
		IntervalMs: event.Interval.Milliseconds(),
	}

	if event.Position != nil {
		lat, lng := event.Position.Latitude(), event.Position.Longitude()
		envelope.Latitude = &lat
		envelope.Longitude = &lng
	}

	if event.Phase != nil {
		phase := event.Phase.String()
		envelope.Phase = &phase
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	return f.client.Publish(ctx, channelPrefix+envelope.DeliveryID, payload).Err()
}

// Subscribe attaches to the delivery's channel. Events arrive on the returned
// channel until cancel is called; malformed payloads are logged and skipped.
func (f *Fanout) Subscribe(ctx context.Context, deliveryID kernel.UUID) (<-chan delivery.PositionUpdateEvent, func(), error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, nil, err
	}

	channel := channelPrefix + deliveryID.String()
	pubsub := f.client.Subscribe(ctx, channel)

	// Force the subscription onto the wire before returning, so no event
	// published after Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan delivery.PositionUpdateEvent)
	done := make(chan struct{})

	go func() {
		defer close(out)
		messages := pubsub.Channel()

		for {
			select {
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				event, err := f.decode(msg.Payload)
				if err != nil {
					f.logger.WarnContext(ctx, "Dropping malformed fan-out message",
						"channel", channel, "error", err)
					continue
				}

				select {
				case out <- event:
				case <-done:
					return
				}
			}
		}
	}()

	// Cancel is idempotent, matching the in-process broker's contract.
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	return out, cancel, nil
}

func (f *Fanout) decode(payload string) (delivery.PositionUpdateEvent, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return delivery.PositionUpdateEvent{}, err
	}

	deliveryID, err := kernel.UUIDFromString(envelope.DeliveryID)
	if err != nil {
		return delivery.PositionUpdateEvent{}, err
	}

	event := delivery.PositionUpdateEvent{
		DeliveryID: deliveryID,
		Timestamp:  envelope.Timestamp,
		Interval:   time.Duration(envelope.IntervalMs) * time.Millisecond,
	}

	if envelope.Latitude != nil && envelope.Longitude != nil {
		position, locErr := kernel.NewLocation(*envelope.Latitude, *envelope.Longitude)
		if locErr != nil {
			return delivery.PositionUpdateEvent{}, locErr
		}
		event.Position = &position
	}

	if envelope.Phase != nil {
		phase, phaseErr := delivery.StatusFromString(*envelope.Phase)
		if phaseErr != nil {
			return delivery.PositionUpdateEvent{}, phaseErr
		}
		event.Phase = &phase
	}

	return event, nil
}
