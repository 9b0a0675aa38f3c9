package commands

import (
	"errors"

	"tracking/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand triggers the assignment of available drivers to pending
// deliveries. This command represents the business operation of matching
// delivery resources with waiting orders: each pending delivery gets the
// nearest available driver.
//
// Example:
//
//	cmd := NewAssignDriverCommand()
//	handler := NewAssignDriverCommandHandler(uowFactory, emitter)
//	err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    log.Printf("No deliveries to assign or no available drivers: %v", err)
//	}
type AssignDriverCommand struct {
	guard guard.ConstructorGuard
}

// NewAssignDriverCommand creates a new command to trigger driver assignment.
// This is a parameterless command that initiates the driver-delivery matching process.
func NewAssignDriverCommand() AssignDriverCommand {
	return AssignDriverCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignDriverCommandIsNotConstructed if validation fails.
func (c *AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}
