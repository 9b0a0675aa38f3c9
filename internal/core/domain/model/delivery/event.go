package delivery

import (
	"time"

	"tracking/internal/core/domain/model/kernel"
)

// PositionUpdateEvent is the transient message published to the fan-out after
// each emitter tick. It is never persisted; observers that miss it reconcile
// via a registry snapshot.
//
// Interval carries the producer's emission cadence so observers size their
// interpolation window from the event instead of hardcoding the cadence on
// both sides.
type PositionUpdateEvent struct {
	DeliveryID kernel.UUID
	Timestamp  time.Time
	Position   *kernel.Location
	Phase      *Status
	DriverID   *kernel.UUID
	Interval   time.Duration
}

// NewPositionEvent creates an event carrying only a position update.
func NewPositionEvent(
	deliveryID kernel.UUID,
	position kernel.Location,
	interval time.Duration,
	now time.Time,
) PositionUpdateEvent {
	return PositionUpdateEvent{
		DeliveryID: deliveryID,
		Timestamp:  now,
		Position:   &position,
		Interval:   interval,
	}
}

// NewPhaseEvent creates an event carrying a phase change, optionally with the
// position written in the same tick.
func NewPhaseEvent(
	deliveryID kernel.UUID,
	phase Status,
	position *kernel.Location,
	interval time.Duration,
	now time.Time,
) PositionUpdateEvent {
	return PositionUpdateEvent{
		DeliveryID: deliveryID,
		Timestamp:  now,
		Position:   position,
		Phase:      &phase,
		Interval:   interval,
	}
}

// IsNewerThan reports whether the event should supersede one applied at the
// given time. Observers must discard events older than the last one they
// applied, since fan-out delivery order is not guaranteed.
func (e PositionUpdateEvent) IsNewerThan(lastApplied time.Time) bool {
	return !e.Timestamp.Before(lastApplied)
}
