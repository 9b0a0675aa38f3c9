package commands

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/ports"
)

// CancelDeliveryCommandHandler handles cancellation of an in-flight delivery.
// The tracking loop is stopped before the status write so no position tick
// can land after the terminal history entry.
type CancelDeliveryCommandHandler struct {
	uowFactory UoWFactory
	emitter    ports.PositionEmitter
	publisher  ports.EventPublisher
	clock      func() time.Time
}

// NewCancelDeliveryCommandHandler creates a handler for delivery cancellation.
func NewCancelDeliveryCommandHandler(
	uowFactory UoWFactory,
	emitter ports.PositionEmitter,
	publisher ports.EventPublisher,
) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		emitter:    emitter,
		publisher:  publisher,
		clock:      time.Now,
	}
}

// Handle processes the cancellation command.
// Stops the emission loop, atomically moves the delivery to Cancelled from
// the phase it was observed in, frees the driver and notifies watchers.
func (h CancelDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.emitter.StopTracking(cmd.DeliveryID())

	now := h.clock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}

	// Compare-and-set against the observed phase: if a confirmation commits
	// in between, this cancel loses instead of overwriting the terminal entry.
	if err = deliveryRepo.CompareAndSetStatus(
		ctx, cmd.DeliveryID(), aggregate.Status(), delivery.Cancelled, now); err != nil {
		return err
	}

	if driverID := aggregate.Driver(); driverID != nil {
		driverRepo := uow.DriverRepository()

		assigned, driverErr := driverRepo.Get(ctx, *driverID)
		if driverErr != nil {
			return driverErr
		}

		assigned.MarkAvailable()
		if err = driverRepo.Update(ctx, assigned); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return h.publisher.Publish(ctx,
		delivery.NewPhaseEvent(cmd.DeliveryID(), delivery.Cancelled, aggregate.Position(), 0, now))
}
