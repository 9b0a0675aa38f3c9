// Package queries contains read-only operations for the tracking system.
// Implements the Query side of the CQRS architecture: handlers read the
// database directly and return plain response structs, bypassing the
// aggregate layer.
package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery retrieves the current snapshot of a single delivery:
// phase, driver, last known position and the full status history. This is
// what a reconnecting observer fetches before subscribing to live events.
type GetDeliveryQuery struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDeliveryQuery creates a query for a delivery snapshot.
func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	q := GetDeliveryQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := q.setDeliveryID(deliveryID); err != nil {
		return GetDeliveryQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to fetch.
func (q GetDeliveryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

func (q *GetDeliveryQuery) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	q.deliveryID = deliveryID
	return nil
}

// StatusHistoryEntry is one record of the delivery's append-only history.
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// GetDeliveryQueryResponse represents the delivery snapshot returned to
// clients.
type GetDeliveryQueryResponse struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	CustomerID kernel.UUID
	Status     string
	DriverID   *kernel.UUID
	Position   *kernel.Location
	History    []StatusHistoryEntry
	UpdatedAt  time.Time
}
