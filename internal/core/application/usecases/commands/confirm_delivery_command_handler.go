package commands

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/ports"
)

// ConfirmDeliveryCommandHandler handles customer confirmation of an arrived
// delivery. The status write is a compare-and-set from Arrived so that a
// confirmation racing a cancellation produces exactly one terminal entry in
// the history.
type ConfirmDeliveryCommandHandler struct {
	uowFactory UoWFactory
	emitter    ports.PositionEmitter
	publisher  ports.EventPublisher
	clock      func() time.Time
}

// NewConfirmDeliveryCommandHandler creates a handler for delivery confirmation.
func NewConfirmDeliveryCommandHandler(
	uowFactory UoWFactory,
	emitter ports.PositionEmitter,
	publisher ports.EventPublisher,
) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
		emitter:    emitter,
		publisher:  publisher,
		clock:      time.Now,
	}
}

// Handle processes the confirmation command.
// Atomically moves the delivery from Arrived to Confirmed, frees the driver
// for new assignments, tears down any remaining emission loop and notifies
// watchers of the terminal phase.
func (h ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	if err := deliveryRepo.CompareAndSetStatus(
		ctx, cmd.DeliveryID(), delivery.Arrived, delivery.Confirmed, now); err != nil {
		return err
	}

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
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

	h.emitter.StopTracking(cmd.DeliveryID())

	return h.publisher.Publish(ctx,
		delivery.NewPhaseEvent(cmd.DeliveryID(), delivery.Confirmed, aggregate.Position(), 0, now))
}
