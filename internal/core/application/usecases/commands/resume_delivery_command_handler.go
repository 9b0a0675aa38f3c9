package commands

import (
	"context"

	"tracking/internal/core/ports"
)

// ResumeDeliveryCommandHandler restarts tracking for a delivery whose driver
// picked up the order at the restaurant. The emitter performs the phase
// transition itself so the loop and the stored status can never disagree.
type ResumeDeliveryCommandHandler struct {
	emitter ports.PositionEmitter
}

// NewResumeDeliveryCommandHandler creates a handler for resume operations.
func NewResumeDeliveryCommandHandler(emitter ports.PositionEmitter) ResumeDeliveryCommandHandler {
	return ResumeDeliveryCommandHandler{
		emitter: emitter,
	}
}

// Handle processes the resume command by delegating to the position emitter,
// which moves the delivery into its destination-bound phase and starts the
// emission loop for the second route leg.
func (h ResumeDeliveryCommandHandler) Handle(ctx context.Context, cmd ResumeDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.emitter.ResumeAfterRestaurant(ctx, cmd.DeliveryID())
}
