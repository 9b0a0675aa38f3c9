package commands

import (
	"context"
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
)

var (
	ErrNoAvailableDriversFound = errors.New("no available drivers found")
	ErrNoPendingDeliveryFound  = errors.New("no pending delivery found")
)

// AssignDriverCommandHandler orchestrates the driver assignment sweep.
// Finds pending deliveries and matches each with the nearest available
// driver, then kicks off the position emission loop for every assignment
// that committed.
//
// Example:
//
//	handler := NewAssignDriverCommandHandler(uowFactory, emitter)
//	cmd := NewAssignDriverCommand()
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoPendingDeliveryFound):
//	    log.Println("No pending deliveries")
//	case errors.Is(err, ErrNoAvailableDriversFound):
//	    log.Println("All drivers are busy")
//	case err != nil:
//	    log.Printf("Assignment failed: %v", err)
//	}
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	emitter    ports.PositionEmitter
	clock      func() time.Time
}

// NewAssignDriverCommandHandler creates a handler for driver assignment operations.
// Requires a UoWFactory for coordinating transactional updates across both
// repositories and a PositionEmitter to start tracking assigned deliveries.
func NewAssignDriverCommandHandler(uowFactory UoWFactory, emitter ports.PositionEmitter) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		emitter:    emitter,
		clock:      time.Now,
	}
}

// Handle processes the driver assignment command.
// Retrieves pending deliveries and available drivers, pairs each delivery with
// its nearest driver, updates both entities within a single transaction, and
// starts tracking only after the transaction commits. Returns specific errors
// for empty inputs (ErrNoPendingDeliveryFound, ErrNoAvailableDriversFound).
func (h AssignDriverCommandHandler) Handle(ctx context.Context, command AssignDriverCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()
	driverRepo := uow.DriverRepository()

	pending, err := deliveryRepo.GetAllPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return ErrNoPendingDeliveryFound
	}

	drivers, err := driverRepo.GetAllAvailable(ctx)
	if err != nil {
		return err
	}
	if len(drivers) == 0 {
		return ErrNoAvailableDriversFound
	}

	assigner := services.NewDriverAssigner()
	now := h.clock()
	assigned := make([]kernel.UUID, 0, len(pending))

	for _, d := range pending {
		driver, assignErr := assigner.Assign(d, drivers, now)
		if errors.Is(assignErr, services.ErrDriverNotFound) {
			break // pool exhausted, the rest wait for the next sweep
		}
		if assignErr != nil {
			return assignErr
		}

		if err = deliveryRepo.Update(ctx, d); err != nil {
			return err
		}

		if err = driverRepo.Update(ctx, driver); err != nil {
			return err
		}

		assigned = append(assigned, d.ID())
	}

	if len(assigned) == 0 {
		return ErrNoAvailableDriversFound
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, id := range assigned {
		if err = h.emitter.StartTracking(ctx, id); err != nil {
			return err
		}
	}

	return nil
}
