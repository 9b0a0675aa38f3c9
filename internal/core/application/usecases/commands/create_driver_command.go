package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var (
	ErrCreateDriverCommandIsNotConstructed = errors.New(
		"CreateDriverCommand must be created via NewCreateDriverCommand constructor",
	)
	ErrDriverNameIsRequired    = errors.New("driver name is required")
	ErrContactNumberIsRequired = errors.New("contact number is required")
)

// CreateDriverCommand represents a request to register a new driver in the
// assignment pool.
type CreateDriverCommand struct { //nolint:recvcheck //using for validation
	driverID      kernel.UUID
	name          string
	contactNumber string
	location      kernel.Location

	guard guard.ConstructorGuard
}

// NewCreateDriverCommand creates a command to register a new driver.
// Validates that the ID is valid, name and contact number are non-empty and
// the starting location has valid coordinates.
func NewCreateDriverCommand(
	driverID kernel.UUID,
	name string,
	contactNumber string,
	location kernel.Location,
) (CreateDriverCommand, error) {
	cmd := CreateDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDriverID(driverID),
		cmd.setName(name),
		cmd.setContactNumber(contactNumber),
		cmd.setLocation(location),
	); err != nil {
		return CreateDriverCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDriverCommand) Validate() error {
	return c.guard.Validate(ErrCreateDriverCommandIsNotConstructed)
}

// DriverID returns the unique identifier for the driver.
func (c CreateDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Name returns the driver's human-readable name.
func (c CreateDriverCommand) Name() string {
	return c.name
}

// ContactNumber returns the driver's phone number.
func (c CreateDriverCommand) ContactNumber() string {
	return c.contactNumber
}

// Location returns the driver's starting position.
func (c CreateDriverCommand) Location() kernel.Location {
	return c.location
}

func (c *CreateDriverCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}

func (c *CreateDriverCommand) setName(name string) error {
	if name == "" {
		return ErrDriverNameIsRequired
	}

	c.name = name
	return nil
}

func (c *CreateDriverCommand) setContactNumber(contactNumber string) error {
	if contactNumber == "" {
		return ErrContactNumberIsRequired
	}

	c.contactNumber = contactNumber
	return nil
}

func (c *CreateDriverCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}
