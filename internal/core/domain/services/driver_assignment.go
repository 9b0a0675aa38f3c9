package services

import (
	"errors"
	"math"
	"time"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/driver"
)

// ErrDriverNotFound is returned when no suitable driver is available for a
// delivery. This occurs when either no drivers are provided or none of the
// provided drivers is currently available.
var ErrDriverNotFound = errors.New("driver not found")

// DriverAssigner is a domain service responsible for finding and assigning
// the optimal driver for a pending delivery based on proximity to the
// restaurant.
//
// Key responsibilities:
//   - Validating deliveries before assignment
//   - Selecting the nearest available driver by great-circle distance
//   - Ensuring the atomic assignment workflow (driver busy + delivery moving)
//
// Business rules:
//   - Deliveries must be Pending before assignment
//   - Only available drivers are considered
//   - Selection prioritizes minimum distance to the restaurant
//   - The first driver wins in case of ties
//
// Example usage:
//
//	assigner := NewDriverAssigner()
//	assigned, err := assigner.Assign(pendingDelivery, drivers, time.Now())
//	if errors.Is(err, ErrDriverNotFound) {
//	    // No available drivers right now, retry on the next sweep
//	    return
//	}
type DriverAssigner struct{}

// NewDriverAssigner creates a new DriverAssigner instance.
func NewDriverAssigner() DriverAssigner {
	return DriverAssigner{}
}

// Assign finds the nearest available driver for the given delivery and
// executes the assignment workflow: the driver is marked busy and the
// delivery moves into its restaurant-bound phase with the driver's current
// position as the starting point.
//
// Returns ErrDriverNotFound if no available driver exists, or a
// validation/transition error from either aggregate.
func (a DriverAssigner) Assign(d *delivery.Delivery, drivers []*driver.Driver, now time.Time) (*driver.Driver, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	best, err := a.findNearestDriver(d, drivers)
	if err != nil {
		return nil, err
	}

	if err = best.MarkBusy(); err != nil {
		return nil, err
	}

	if err = d.AssignDriver(best.ID(), best.Location(), now); err != nil {
		best.MarkAvailable()
		return nil, err
	}

	return best, nil
}

// findNearestDriver searches the provided drivers for the available one
// closest to the delivery's restaurant.
func (a DriverAssigner) findNearestDriver(d *delivery.Delivery, drivers []*driver.Driver) (*driver.Driver, error) {
	var (
		best     *driver.Driver
		bestDist = math.MaxFloat64
	)

	for _, candidate := range drivers {
		if err := candidate.Validate(); err != nil {
			return nil, err
		}

		if !candidate.IsAvailable() {
			continue
		}

		dist, err := candidate.DistanceTo(d.RestaurantLocation())
		if err != nil {
			return nil, err
		}

		if dist < bestDist {
			bestDist = dist
			best = candidate
		}
	}

	if best == nil {
		return nil, ErrDriverNotFound
	}

	return best, nil
}
