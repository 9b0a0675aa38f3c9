package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var ErrStopDeliveryCommandIsNotConstructed = errors.New(
	"StopDeliveryCommand must be created via NewStopDeliveryCommand constructor",
)

// StopDeliveryCommand represents a request to halt the emission loop for a
// delivery without touching its status.
type StopDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStopDeliveryCommand creates a command to stop tracking a delivery.
func NewStopDeliveryCommand(deliveryID kernel.UUID) (StopDeliveryCommand, error) {
	cmd := StopDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setDeliveryID(deliveryID); err != nil {
		return StopDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c StopDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrStopDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to stop tracking.
func (c StopDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c *StopDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}
