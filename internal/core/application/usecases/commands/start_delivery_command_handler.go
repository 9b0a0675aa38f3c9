package commands

import (
	"context"

	"tracking/internal/core/ports"
)

// StartDeliveryCommandHandler starts the restaurant-bound emission loop for a
// delivery. Starting a delivery that is already tracked is a no-op, so the
// endpoint can be retried safely.
type StartDeliveryCommandHandler struct {
	emitter ports.PositionEmitter
}

// NewStartDeliveryCommandHandler creates a handler for start operations.
func NewStartDeliveryCommandHandler(emitter ports.PositionEmitter) StartDeliveryCommandHandler {
	return StartDeliveryCommandHandler{
		emitter: emitter,
	}
}

// Handle processes the start command by delegating to the position emitter,
// which validates the delivery's phase and spawns the emission loop.
func (h StartDeliveryCommandHandler) Handle(ctx context.Context, cmd StartDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.emitter.StartTracking(ctx, cmd.DeliveryID())
}
