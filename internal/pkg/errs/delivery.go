package errs

import "fmt"

// Sentinel errors for the delivery tracking failure taxonomy.
var (
	// ErrRouteUnavailable indicates the routing provider could not produce a path.
	// Recoverable: the emitter retries on its next tick before escalating.
	ErrRouteUnavailable = fmt.Errorf("route unavailable")

	// ErrRegistryWriteFailure indicates the delivery registry could not be written.
	// Recoverable: same retry and escalation policy as ErrRouteUnavailable.
	ErrRegistryWriteFailure = fmt.Errorf("registry write failure")

	// ErrInvalidDeliveryState indicates an action was attempted in a phase that
	// does not permit it. Rejected synchronously, never retried.
	ErrInvalidDeliveryState = fmt.Errorf("invalid delivery state")

	// ErrSubscriptionLost indicates the fan-out dropped a subscriber. The observer
	// must re-subscribe and re-snapshot; the emitter is unaffected.
	ErrSubscriptionLost = fmt.Errorf("subscription lost")
)

// RouteUnavailableError reports a failed route computation between two endpoints.
type RouteUnavailableError struct {
	Origin      string
	Destination string
	Cause       error
}

// NewRouteUnavailableError creates a RouteUnavailableError for the given endpoints.
func NewRouteUnavailableError(origin, destination string, cause error) *RouteUnavailableError {
	return &RouteUnavailableError{
		Origin:      origin,
		Destination: destination,
		Cause:       cause,
	}
}

func (e *RouteUnavailableError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: from %s to %s (cause: %s)",
			ErrRouteUnavailable, e.Origin, e.Destination, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: from %s to %s", ErrRouteUnavailable, e.Origin, e.Destination))
}

func (e *RouteUnavailableError) Unwrap() error {
	return ErrRouteUnavailable
}

// RegistryWriteFailureError reports a failed write of delivery state to persistence.
type RegistryWriteFailureError struct {
	DeliveryID string
	Cause      error
}

// NewRegistryWriteFailureError creates a RegistryWriteFailureError for the given delivery.
func NewRegistryWriteFailureError(deliveryID string, cause error) *RegistryWriteFailureError {
	return &RegistryWriteFailureError{
		DeliveryID: deliveryID,
		Cause:      cause,
	}
}

func (e *RegistryWriteFailureError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: delivery %s (cause: %s)",
			ErrRegistryWriteFailure, e.DeliveryID, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: delivery %s", ErrRegistryWriteFailure, e.DeliveryID))
}

func (e *RegistryWriteFailureError) Unwrap() error {
	return ErrRegistryWriteFailure
}

// InvalidDeliveryStateError reports an action attempted in a disallowed phase.
type InvalidDeliveryStateError struct {
	Action  string
	Current string
}

// NewInvalidDeliveryStateError creates an InvalidDeliveryStateError for the given action and phase.
func NewInvalidDeliveryStateError(action, current string) *InvalidDeliveryStateError {
	return &InvalidDeliveryStateError{
		Action:  action,
		Current: current,
	}
}

func (e *InvalidDeliveryStateError) Error() string {
	return sanitize(fmt.Sprintf("%s: cannot %s while %s", ErrInvalidDeliveryState, e.Action, e.Current))
}

func (e *InvalidDeliveryStateError) Unwrap() error {
	return ErrInvalidDeliveryState
}
