// Package delivery provides the domain model for tracked deliveries: the
// Delivery aggregate root, the phase state machine, and the transient
// position update event published to observers.
//
// Key business rules:
//   - A delivery's status history is append-only, non-decreasing in time,
//     and its last entry always equals the current status
//   - Restaurant arrival is detected by proximity; destination arrival is
//     detected by route exhaustion
//   - Resume after pickup and customer confirmation are explicit actions,
//     never automatic
//   - Cancellation and unrecoverable failure are recorded as statuses;
//     a delivery record is never deleted while active
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are
// enforced.
package delivery
