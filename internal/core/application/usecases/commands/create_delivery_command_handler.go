package commands

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/delivery"
)

// CreateDeliveryCommandHandler handles the business logic for delivery
// registration. New deliveries start in the pending phase and wait for the
// assignment sweep to pick them up.
type CreateDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	clock      func() time.Time
}

// NewCreateDeliveryCommandHandler creates a handler for delivery registration.
// Requires a DeliveryUoWFactory for transactional persistence.
func NewCreateDeliveryCommandHandler(uowFactory DeliveryUoWFactory) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

// Handle processes the delivery registration command.
// Creates the delivery in pending status with a single-entry history and
// persists it within a transaction.
func (h *CreateDeliveryCommandHandler) Handle(ctx context.Context, cmd CreateDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := delivery.NewDelivery(
		cmd.DeliveryID(),
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.RestaurantLocation(),
		cmd.DeliveryLocation(),
		h.clock(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DeliveryRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
