// Package ports defines the contracts between the application core and
// infrastructure adapters: persistence, route planning, event fan-out and
// the position emitter. These interfaces establish dependency inversion and
// testability boundaries.
package ports

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
// Provides methods for storing, retrieving, and querying deliveries with their
// complete state including the append-only status history.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate to storage.
	// The delivery must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate, including
	// any history entries appended since it was loaded.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError if no such delivery exists.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetAllActive retrieves all deliveries that are neither confirmed nor
	// cancelled. Used by the watchdog job and the assignment sweep.
	GetAllActive(ctx context.Context) ([]*delivery.Delivery, error)

	// GetAllPending retrieves deliveries still waiting for a driver.
	GetAllPending(ctx context.Context) ([]*delivery.Delivery, error)

	// CompareAndSetStatus atomically moves the delivery from the expected
	// status to the next one, appending a history entry stamped with now.
	// Returns errs.ErrInvalidDeliveryState without modifying anything if the
	// stored status no longer matches expected. This is the linearization
	// point for racing terminal writes.
	CompareAndSetStatus(ctx context.Context, id kernel.UUID, expected delivery.Status, next delivery.Status, now time.Time) error
}
