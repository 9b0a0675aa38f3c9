package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
)

// PositionEmitter drives the simulated movement of a delivery's driver along
// a computed route, one step per cadence tick.
//
// All three operations are idempotent with respect to the loop they control:
// starting an already-tracked delivery does nothing, and stopping an unknown
// one is a no-op.
type PositionEmitter interface {
	// StartTracking begins the restaurant-bound emission loop for the
	// delivery. Routes are computed from the driver's current position
	// through the restaurant to the drop-off point.
	StartTracking(ctx context.Context, deliveryID kernel.UUID) error

	// ResumeAfterRestaurant begins the destination-bound emission loop for a
	// delivery paused at the restaurant.
	ResumeAfterRestaurant(ctx context.Context, deliveryID kernel.UUID) error

	// StopTracking tears down the emission loop for the delivery, if any.
	StopTracking(deliveryID kernel.UUID)
}
