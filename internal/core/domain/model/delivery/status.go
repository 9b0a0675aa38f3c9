package delivery

import (
	"fmt"

	"tracking/internal/pkg/errs"
)

// Status represents the delivery's current phase in its lifecycle.
// It implements a state machine with defined transitions so deliveries
// always follow the correct tracking workflow.
//
// State transitions:
//
//	Pending ──> ToRestaurant ──> AtRestaurant ──> ToDestination ──> Arrived ──> Confirmed
//	                                  (resume)        (route             (customer
//	              (proximity)                          exhausted)         confirmation)
//
//	Any non-terminal state ──> Cancelled (explicit cancellation)
//	Any non-terminal state ──> Error     (unrecoverable failure)
//
// Restaurant arrival is detected geometrically (proximity threshold) while
// destination arrival is detected by route exhaustion. The asymmetry is
// deliberate: a driver may reach the restaurant's vicinity before consuming
// the whole leg, but passing near the destination mid-route must not count
// as arrival.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status before a driver has been assigned.
	Pending

	// ToRestaurant indicates the driver is travelling to the restaurant.
	// Entered on driver assignment.
	ToRestaurant

	// AtRestaurant indicates the driver is within the proximity threshold of
	// the restaurant. The movement loop is paused until an explicit resume.
	AtRestaurant

	// ToDestination indicates the driver is travelling to the delivery
	// destination after picking up the order.
	ToDestination

	// Arrived indicates the driver has exhausted the destination-bound route.
	Arrived

	// Confirmed indicates the customer confirmed receipt. Terminal.
	Confirmed

	// Cancelled indicates the delivery was cancelled. Terminal.
	Cancelled

	// Error indicates an unrecoverable failure: route computation failed,
	// position publishing failed beyond the retry budget, or required
	// delivery data was missing. The movement loop halts but the record
	// survives and the state is observer-visible.
	Error
)

// getStatusStrings returns the wire-level names for every Status value.
// The names match the tracking channel protocol consumed by observers.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "UNKNOWN",
		Pending:       "PENDING",
		ToRestaurant:  "DRIVER_ON_WAY_TO_RESTAURANT",
		AtRestaurant:  "DRIVER_AT_RESTAURANT",
		ToDestination: "DRIVER_ON_WAY_TO_DELIVERY",
		Arrived:       "DRIVER_ARRIVED",
		Confirmed:     "DELIVERY_CONFIRMED",
		Cancelled:     "DELIVERY_CANCELLED",
		Error:         "ERROR",
	}
}

// getValidStatusStrings returns only valid Status values, to support validation.
func getValidStatusStrings() map[Status]string {
	valid := getStatusStrings()
	delete(valid, Unknown)
	return valid
}

// StatusFromString parses a wire-level status name back into a Status.
// Returns an error for unrecognized names.
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire-level name of the status.
// This method implements the fmt.Stringer interface and is safe to call on
// any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Confirmed || s == Cancelled
}

// IsMoving reports whether the status corresponds to an active route leg,
// i.e. whether the position emitter is permitted to advance the driver.
func (s Status) IsMoving() bool {
	return s == ToRestaurant || s == ToDestination
}

// Assign transitions the status to ToRestaurant on driver assignment.
//
// Valid transitions:
//   - Pending -> ToRestaurant
//
// Returns (0, error) if a driver is already working the delivery or the
// delivery is terminal.
func (s Status) Assign() (Status, error) {
	if s != Pending {
		return 0, errs.NewInvalidDeliveryStateError("assign driver", s.String())
	}

	return ToRestaurant, nil
}

// ArriveAtRestaurant transitions the status to AtRestaurant.
//
// Valid transitions:
//   - ToRestaurant -> AtRestaurant (proximity threshold crossed)
func (s Status) ArriveAtRestaurant() (Status, error) {
	if s != ToRestaurant {
		return 0, errs.NewInvalidDeliveryStateError("arrive at restaurant", s.String())
	}

	return AtRestaurant, nil
}

// ValidateResume checks if the status allows resuming toward the destination
// without performing the transition. Resume is an explicit action, never
// automatic.
func (s Status) ValidateResume() error {
	if s != AtRestaurant {
		return errs.NewInvalidDeliveryStateError("resume", s.String())
	}
	return nil
}

// Resume transitions the status to ToDestination.
//
// Valid transitions:
//   - AtRestaurant -> ToDestination (explicit resume after pickup)
func (s Status) Resume() (Status, error) {
	if err := s.ValidateResume(); err != nil {
		return 0, err
	}

	return ToDestination, nil
}

// Arrive transitions the status to Arrived.
//
// Valid transitions:
//   - ToDestination -> Arrived (destination-bound route exhausted)
func (s Status) Arrive() (Status, error) {
	if s != ToDestination {
		return 0, errs.NewInvalidDeliveryStateError("arrive", s.String())
	}

	return Arrived, nil
}

// ValidateConfirm checks if the status allows customer confirmation without
// performing the transition. Confirmation is only valid from Arrived.
func (s Status) ValidateConfirm() error {
	if s != Arrived {
		return errs.NewInvalidDeliveryStateError("confirm", s.String())
	}
	return nil
}

// Confirm transitions the status to Confirmed. Irreversible.
//
// Valid transitions:
//   - Arrived -> Confirmed (explicit customer confirmation)
func (s Status) Confirm() (Status, error) {
	if err := s.ValidateConfirm(); err != nil {
		return 0, err
	}

	return Confirmed, nil
}

// ValidateCancel checks if the status allows cancellation without performing
// the transition. Any state except the terminal ones may be cancelled.
func (s Status) ValidateCancel() error {
	if s.IsTerminal() {
		return errs.NewInvalidDeliveryStateError("cancel", s.String())
	}
	if err := s.Validate(); err != nil {
		return err
	}
	return nil
}

// Cancel transitions the status to Cancelled. Terminal.
func (s Status) Cancel() (Status, error) {
	if err := s.ValidateCancel(); err != nil {
		return 0, err
	}

	return Cancelled, nil
}

// Fail transitions the status to Error. Reachable from any non-terminal
// state; the delivery record survives and the state is published to
// observers.
func (s Status) Fail() (Status, error) {
	if s.IsTerminal() {
		return 0, errs.NewInvalidDeliveryStateError("fail", s.String())
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}

	return Error, nil
}
