package driver

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when attempting to create a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrContactNumberIsRequired is returned when attempting to create a driver without a contact number.
	ErrContactNumberIsRequired = errs.NewValueIsRequiredError("contactNumber")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
	// ErrDriverIsBusy is returned when attempting to mark an already-dispatched driver as busy.
	ErrDriverIsBusy = errors.New("driver is already dispatched to a delivery")
)

// Driver represents a delivery driver in the system.
// It is an aggregate root that manages driver identity, availability, and the
// last reported position used for assignment decisions.
//
// Key responsibilities:
//   - Managing driver identity (ID, name, contact number)
//   - Tracking availability for delivery assignment
//   - Holding the last known geographic position
//
// Business rules:
//   - Driver must have a valid UUID, non-empty name, and non-empty contact number
//   - A driver carries at most one delivery at a time
//   - New drivers start available
//
// Example usage:
//
//	location, _ := kernel.NewLocation(6.9271, 79.8612)
//	driver, err := NewDriver(kernel.NewUUID(), "Kasun Perera", "+94771234567", location)
//	if err != nil {
//	    // Handle construction error
//	}
//	// Driver is ready for assignment
type Driver struct {
	// id uniquely identifies the driver
	id kernel.UUID
	// name is the human-readable name of the driver
	name string
	// contactNumber is the phone number customers can reach the driver on
	contactNumber string
	// available reports whether the driver can accept a new delivery
	available bool
	// location is the driver's last known geographic position
	location kernel.Location
	// guard ensures the driver was properly constructed
	guard guard.ConstructorGuard
}

// NewDriver creates a new Driver with the specified parameters.
// This is the only way to create a valid Driver instance.
//
// Parameters:
//   - id: Unique identifier for the driver (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - contactNumber: Phone number (must be non-empty)
//   - location: Last known position (must be valid coordinates)
//
// Returns:
//   - *Driver: A fully initialized driver, available for assignment
//   - error: Validation error if any parameter is invalid (aggregated errors for multiple issues)
func NewDriver(id kernel.UUID, name string, contactNumber string, location kernel.Location) (*Driver, error) {
	driver := &Driver{
		available: true,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		driver.setID(id),
		driver.setName(name),
		driver.setContactNumber(contactNumber),
		driver.setLocation(location),
	); err != nil {
		return nil, err
	}

	return driver, nil
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage,
// preserving its availability flag. The restored driver behaves identically
// to one mutated through normal domain operations.
func RestoreDriver(
	id kernel.UUID,
	name string,
	contactNumber string,
	available bool,
	location kernel.Location,
) (*Driver, error) {
	driver, err := NewDriver(id, name, contactNumber, location)
	if err != nil {
		return nil, err
	}

	driver.available = available
	return driver, nil
}

// IsEqual compares two drivers for equality based on their unique identifiers.
// Two drivers are considered equal if they have the same ID, regardless of
// other attributes.
func (d *Driver) IsEqual(other *Driver) bool {
	if other == nil {
		return false
	}
	return d.id.IsEqual(other.id)
}

// Validate checks if the Driver was properly constructed using the NewDriver
// constructor. The zero value of Driver is invalid and will fail this
// validation.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// ID returns the unique identifier of the driver.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the human-readable name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// ContactNumber returns the driver's phone number.
func (d *Driver) ContactNumber() string {
	return d.contactNumber
}

// IsAvailable reports whether the driver can accept a new delivery.
func (d *Driver) IsAvailable() bool {
	return d.available
}

// Location returns the driver's last known geographic position.
func (d *Driver) Location() kernel.Location {
	return d.location
}

// MarkBusy marks the driver as dispatched to a delivery.
//
// Returns ErrDriverIsBusy if the driver is already carrying a delivery:
// a driver handles at most one delivery at a time.
func (d *Driver) MarkBusy() error {
	if !d.available {
		return ErrDriverIsBusy
	}
	d.available = false
	return nil
}

// MarkAvailable returns the driver to the assignment pool after the current
// delivery completes or is cancelled. Marking an already-available driver is
// a no-op.
func (d *Driver) MarkAvailable() {
	d.available = true
}

// MoveTo records a new last known position for the driver.
func (d *Driver) MoveTo(location kernel.Location) error {
	return d.setLocation(location)
}

// DistanceTo calculates the great-circle distance in meters from the driver's
// last known position to the target location. Used to rank candidate drivers
// during assignment.
func (d *Driver) DistanceTo(target kernel.Location) (float64, error) {
	return d.location.DistanceTo(target)
}

// setID sets the driver's unique identifier with validation.
// Note: We intentionally use a pointer receiver in the setter to modify the original
// Driver struct. This is part of the controlled construction process.
func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

// setName sets the driver's name with validation.
// Note: We intentionally use a pointer receiver in the setter to modify the original
// Driver struct. This is part of the controlled construction process.
func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

// setContactNumber sets the driver's contact number with validation.
// Note: We intentionally use a pointer receiver in the setter to modify the original
// Driver struct. This is part of the controlled construction process.
func (d *Driver) setContactNumber(contactNumber string) error {
	if contactNumber == "" {
		return ErrContactNumberIsRequired
	}
	d.contactNumber = contactNumber
	return nil
}

// setLocation sets the driver's position with validation.
// Note: We intentionally use a pointer receiver in the setter to modify the original
// Driver struct. This is part of the controlled construction process.
func (d *Driver) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.location = location
	return nil
}
