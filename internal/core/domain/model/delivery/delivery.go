package delivery

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not
	// created through NewDelivery or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

	// ErrHistoryIsCorrupted is returned when a restored status history violates
	// the ordering invariant or disagrees with the current status.
	ErrHistoryIsCorrupted = errors.New("status history must be non-decreasing and end at the current status")
)

// StatusRecord is one append-only entry of a delivery's status history.
type StatusRecord struct {
	Status    Status
	Timestamp time.Time
}

// Delivery is the aggregate root for a tracked delivery. It owns the phase
// state machine's persistent side: current status, the append-only status
// history, the driver assignment, and the driver's last written position.
//
// Invariants:
//   - The status history is monotonically non-decreasing in time.
//   - The last history entry always equals the current status.
//   - Position and phase fields are mutated only by the position emitter;
//     customer confirmation and cancellation go through the compare-and-set
//     path of the repository.
//
// A delivery is never deleted while active: cancellation records a terminal
// Cancelled status instead of removing the record.
type Delivery struct {
	// id uniquely identifies the delivery
	id kernel.UUID

	// orderID references the order this delivery fulfils
	orderID kernel.UUID

	// customerID identifies the receiving customer
	customerID kernel.UUID

	// restaurantLocation is the pickup point
	restaurantLocation kernel.Location

	// deliveryLocation is the drop-off point
	deliveryLocation kernel.Location

	// driverID is the assigned driver (nil until assignment)
	driverID *kernel.UUID

	// driverPosition is the driver's last written position (nil until assignment)
	driverPosition *kernel.Location

	// status is the current phase
	status Status

	// history is the append-only status history
	history []StatusRecord

	// updatedAt is the time of the last mutation
	updatedAt time.Time

	// guard ensures the delivery was created via a constructor
	guard guard.ConstructorGuard
}

// NewDelivery creates a new Delivery awaiting driver assignment.
//
// Parameters:
//   - id: unique delivery identifier
//   - orderID: the order being delivered
//   - customerID: the receiving customer
//   - restaurantLocation: validated pickup location
//   - deliveryLocation: validated drop-off location
//   - now: creation time, recorded as the first history entry
//
// The delivery starts in Pending with a single-entry history.
func NewDelivery(
	id kernel.UUID,
	orderID kernel.UUID,
	customerID kernel.UUID,
	restaurantLocation kernel.Location,
	deliveryLocation kernel.Location,
	now time.Time,
) (*Delivery, error) {
	d := &Delivery{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setOrderID(orderID),
		d.setCustomerID(customerID),
		d.setRestaurantLocation(restaurantLocation),
		d.setDeliveryLocation(deliveryLocation),
	); err != nil {
		return nil, err
	}

	d.history = []StatusRecord{{Status: Pending, Timestamp: now}}
	d.updatedAt = now
	return d, nil
}

// RestoreDelivery reconstructs a Delivery aggregate from persistent storage,
// preserving its status history and driver state. The restored aggregate
// behaves identically to one mutated through normal domain operations.
//
// The history invariant is re-checked on restore so corrupted rows surface
// as ErrHistoryIsCorrupted instead of silently violating ordering
// guarantees downstream.
func RestoreDelivery(
	id kernel.UUID,
	orderID kernel.UUID,
	customerID kernel.UUID,
	restaurantLocation kernel.Location,
	deliveryLocation kernel.Location,
	driverID *kernel.UUID,
	driverPosition *kernel.Location,
	status Status,
	history []StatusRecord,
	updatedAt time.Time,
) (*Delivery, error) {
	d := &Delivery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setOrderID(orderID),
		d.setCustomerID(customerID),
		d.setRestaurantLocation(restaurantLocation),
		d.setDeliveryLocation(deliveryLocation),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if driverID != nil {
		if err := driverID.Validate(); err != nil {
			return nil, err
		}
		copied := *driverID
		d.driverID = &copied
	}

	if driverPosition != nil {
		if err := driverPosition.Validate(); err != nil {
			return nil, err
		}
		copied := *driverPosition
		d.driverPosition = &copied
	}

	if err := validateHistory(history, status); err != nil {
		return nil, err
	}

	d.status = status
	d.history = make([]StatusRecord, len(history))
	copy(d.history, history)
	d.updatedAt = updatedAt
	return d, nil
}

// validateHistory enforces the history invariant: non-empty, timestamps
// non-decreasing, last entry equal to the current status.
func validateHistory(history []StatusRecord, current Status) error {
	if len(history) == 0 {
		return ErrHistoryIsCorrupted
	}

	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			return ErrHistoryIsCorrupted
		}
	}

	if history[len(history)-1].Status != current {
		return ErrHistoryIsCorrupted
	}

	return nil
}

// Validate ensures the Delivery was constructed via NewDelivery or
// RestoreDelivery.
func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

// IsEqual compares two deliveries by their unique identifiers.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// OrderID returns the identifier of the order being delivered.
func (d *Delivery) OrderID() kernel.UUID {
	return d.orderID
}

// CustomerID returns the identifier of the receiving customer.
func (d *Delivery) CustomerID() kernel.UUID {
	return d.customerID
}

// RestaurantLocation returns the pickup location.
func (d *Delivery) RestaurantLocation() kernel.Location {
	return d.restaurantLocation
}

// DeliveryLocation returns the drop-off location.
func (d *Delivery) DeliveryLocation() kernel.Location {
	return d.deliveryLocation
}

// Driver returns the assigned driver's ID, or nil before assignment.
func (d *Delivery) Driver() *kernel.UUID {
	return d.driverID
}

// Position returns the driver's last written position, or nil before
// assignment.
func (d *Delivery) Position() *kernel.Location {
	return d.driverPosition
}

// Status returns the current phase of the delivery.
func (d *Delivery) Status() Status {
	return d.status
}

// History returns a copy of the append-only status history.
func (d *Delivery) History() []StatusRecord {
	out := make([]StatusRecord, len(d.history))
	copy(out, d.history)
	return out
}

// UpdatedAt returns the time of the last mutation.
func (d *Delivery) UpdatedAt() time.Time {
	return d.updatedAt
}

// AssignDriver assigns a driver and moves the delivery into ToRestaurant.
// The driver's last known position becomes the delivery's initial driver
// position and the origin of the restaurant-bound route leg.
//
// Returns an InvalidDeliveryStateError unless the delivery is Pending.
func (d *Delivery) AssignDriver(driverID kernel.UUID, startPosition kernel.Location, now time.Time) error {
	if err := errors.Join(driverID.Validate(), startPosition.Validate()); err != nil {
		return err
	}

	newStatus, err := d.status.Assign()
	if err != nil {
		return err
	}

	d.driverID = &driverID
	d.driverPosition = &startPosition
	d.changeStatus(newStatus, now)
	return nil
}

// UpdatePosition records a new driver position written by the emitter.
// Permitted only while the delivery is in a moving phase.
func (d *Delivery) UpdatePosition(position kernel.Location, now time.Time) error {
	if err := position.Validate(); err != nil {
		return err
	}

	if !d.status.IsMoving() {
		return errs.NewInvalidDeliveryStateError("update position", d.status.String())
	}

	d.driverPosition = &position
	d.updatedAt = d.clamp(now)
	return nil
}

// ArriveAtRestaurant moves the delivery into AtRestaurant after the
// proximity threshold was crossed.
func (d *Delivery) ArriveAtRestaurant(now time.Time) error {
	newStatus, err := d.status.ArriveAtRestaurant()
	if err != nil {
		return err
	}

	d.changeStatus(newStatus, now)
	return nil
}

// Resume moves the delivery into ToDestination after pickup. Resume is an
// explicit action and is only valid from AtRestaurant.
func (d *Delivery) Resume(now time.Time) error {
	newStatus, err := d.status.Resume()
	if err != nil {
		return err
	}

	d.changeStatus(newStatus, now)
	return nil
}

// Arrive moves the delivery into Arrived once the destination-bound route is
// exhausted.
func (d *Delivery) Arrive(now time.Time) error {
	newStatus, err := d.status.Arrive()
	if err != nil {
		return err
	}

	d.changeStatus(newStatus, now)
	return nil
}

// Confirm records the customer's receipt confirmation. Terminal and
// irreversible; only valid from Arrived.
func (d *Delivery) Confirm(now time.Time) error {
	newStatus, err := d.status.Confirm()
	if err != nil {
		return err
	}

	d.changeStatus(newStatus, now)
	return nil
}

// Cancel records an explicit cancellation. Valid from any non-terminal state.
// The record is kept; cancellation never deletes a delivery.
func (d *Delivery) Cancel(now time.Time) error {
	newStatus, err := d.status.Cancel()
	if err != nil {
		return err
	}

	d.changeStatus(newStatus, now)
	return nil
}

// Fail records an unrecoverable failure, halting the movement loop while
// keeping the record observer-visible.
func (d *Delivery) Fail(now time.Time) error {
	newStatus, err := d.status.Fail()
	if err != nil {
		return err
	}

	d.changeStatus(newStatus, now)
	return nil
}

// changeStatus appends a history entry and updates the current status.
// The timestamp is clamped so the history stays non-decreasing even if the
// caller's clock read races an earlier append.
func (d *Delivery) changeStatus(next Status, now time.Time) {
	ts := d.clamp(now)
	d.status = next
	d.history = append(d.history, StatusRecord{Status: next, Timestamp: ts})
	d.updatedAt = ts
}

// clamp returns now, raised to the last history timestamp if now precedes it.
func (d *Delivery) clamp(now time.Time) time.Time {
	if n := len(d.history); n > 0 && now.Before(d.history[n-1].Timestamp) {
		return d.history[n-1].Timestamp
	}
	return now
}

// setID validates and sets the delivery's unique identifier.
func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

// setOrderID validates and sets the order reference.
func (d *Delivery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	d.orderID = orderID
	return nil
}

// setCustomerID validates and sets the customer reference.
func (d *Delivery) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	d.customerID = customerID
	return nil
}

// setRestaurantLocation validates and sets the pickup location.
func (d *Delivery) setRestaurantLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.restaurantLocation = location
	return nil
}

// setDeliveryLocation validates and sets the drop-off location.
func (d *Delivery) setDeliveryLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.deliveryLocation = location
	return nil
}
