package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/driver"
)

func Test_AssignDriverCommandHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns_nearest_driver_and_starts_tracking", func(t *testing.T) {
		// Given
		d := pendingDelivery(t)
		near := availableDriver(t, 6.9010, 79.8510)
		far := availableDriver(t, 6.9500, 79.9000)

		deliveries := &MockDeliveryRepository{}
		drivers := &MockDriverRepository{}
		deliveries.On("GetAllPending", ctx).Return([]*delivery.Delivery{d}, nil)
		deliveries.On("Update", ctx, d).Return(nil)
		drivers.On("GetAllAvailable", ctx).Return([]*driver.Driver{far, near}, nil)
		drivers.On("Update", ctx, near).Return(nil)

		uow := &MockUoW{deliveries: deliveries, drivers: drivers}
		emitter := &MockEmitter{}
		emitter.On("StartTracking", ctx, d.ID()).Return(nil)

		handler := commands.NewAssignDriverCommandHandler(MockUoWFactory{uow: uow}, emitter)

		// When
		err := handler.Handle(ctx, commands.NewAssignDriverCommand())

		// Then
		require.NoError(t, err)
		assert.True(t, uow.committed)
		assert.Equal(t, delivery.ToRestaurant, d.Status())
		assert.False(t, near.IsAvailable())
		deliveries.AssertExpectations(t)
		drivers.AssertExpectations(t)
		emitter.AssertExpectations(t)
	})

	t.Run("returns_error_when_no_pending_deliveries", func(t *testing.T) {
		// Given
		deliveries := &MockDeliveryRepository{}
		deliveries.On("GetAllPending", ctx).Return([]*delivery.Delivery{}, nil)

		uow := &MockUoW{deliveries: deliveries, drivers: &MockDriverRepository{}}
		handler := commands.NewAssignDriverCommandHandler(MockUoWFactory{uow: uow}, &MockEmitter{})

		// When
		err := handler.Handle(ctx, commands.NewAssignDriverCommand())

		// Then
		assert.ErrorIs(t, err, commands.ErrNoPendingDeliveryFound)
		assert.False(t, uow.committed)
	})

	t.Run("returns_error_when_no_available_drivers", func(t *testing.T) {
		// Given
		d := pendingDelivery(t)
		deliveries := &MockDeliveryRepository{}
		drivers := &MockDriverRepository{}
		deliveries.On("GetAllPending", ctx).Return([]*delivery.Delivery{d}, nil)
		drivers.On("GetAllAvailable", ctx).Return([]*driver.Driver{}, nil)

		uow := &MockUoW{deliveries: deliveries, drivers: drivers}
		handler := commands.NewAssignDriverCommandHandler(MockUoWFactory{uow: uow}, &MockEmitter{})

		// When
		err := handler.Handle(ctx, commands.NewAssignDriverCommand())

		// Then
		assert.ErrorIs(t, err, commands.ErrNoAvailableDriversFound)
		assert.False(t, uow.committed)
		assert.Equal(t, delivery.Pending, d.Status())
	})

	t.Run("leftover_deliveries_wait_for_next_sweep", func(t *testing.T) {
		// Given: two pending deliveries but a single driver
		first := pendingDelivery(t)
		second := pendingDelivery(t)
		only := availableDriver(t, 6.9010, 79.8510)

		deliveries := &MockDeliveryRepository{}
		drivers := &MockDriverRepository{}
		deliveries.On("GetAllPending", ctx).Return([]*delivery.Delivery{first, second}, nil)
		deliveries.On("Update", ctx, mock.Anything).Return(nil)
		drivers.On("GetAllAvailable", ctx).Return([]*driver.Driver{only}, nil)
		drivers.On("Update", ctx, only).Return(nil)

		uow := &MockUoW{deliveries: deliveries, drivers: drivers}
		emitter := &MockEmitter{}
		emitter.On("StartTracking", ctx, first.ID()).Return(nil)

		handler := commands.NewAssignDriverCommandHandler(MockUoWFactory{uow: uow}, emitter)

		// When
		err := handler.Handle(ctx, commands.NewAssignDriverCommand())

		// Then
		require.NoError(t, err)
		assert.Equal(t, delivery.ToRestaurant, first.Status())
		assert.Equal(t, delivery.Pending, second.Status())
		emitter.AssertNotCalled(t, "StartTracking", ctx, second.ID())
	})

	t.Run("rejects_zero_value_command", func(t *testing.T) {
		handler := commands.NewAssignDriverCommandHandler(
			MockUoWFactory{uow: &MockUoW{}}, &MockEmitter{})

		err := handler.Handle(ctx, commands.AssignDriverCommand{})

		assert.ErrorIs(t, err, commands.ErrAssignDriverCommandIsNotConstructed)
	})
}
