package commands

import (
	"context"

	"tracking/internal/core/ports"
)

// StopDeliveryCommandHandler tears down the emission loop for a delivery.
// The delivery keeps its current status; a later start or resume can pick the
// simulation back up. Stopping an untracked delivery is a no-op.
type StopDeliveryCommandHandler struct {
	emitter ports.PositionEmitter
}

// NewStopDeliveryCommandHandler creates a handler for stop operations.
func NewStopDeliveryCommandHandler(emitter ports.PositionEmitter) StopDeliveryCommandHandler {
	return StopDeliveryCommandHandler{
		emitter: emitter,
	}
}

// Handle processes the stop command by halting the delivery's emission loop.
func (h StopDeliveryCommandHandler) Handle(_ context.Context, cmd StopDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.emitter.StopTracking(cmd.DeliveryID())
	return nil
}
