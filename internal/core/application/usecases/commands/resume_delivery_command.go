package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var ErrResumeDeliveryCommandIsNotConstructed = errors.New(
	"ResumeDeliveryCommand must be created via NewResumeDeliveryCommand constructor",
)

// ResumeDeliveryCommand represents a request to resume a delivery paused at
// the restaurant and start its destination-bound leg.
type ResumeDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewResumeDeliveryCommand creates a command to resume a paused delivery.
func NewResumeDeliveryCommand(deliveryID kernel.UUID) (ResumeDeliveryCommand, error) {
	cmd := ResumeDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setDeliveryID(deliveryID); err != nil {
		return ResumeDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ResumeDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrResumeDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to resume.
func (c ResumeDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c *ResumeDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}
