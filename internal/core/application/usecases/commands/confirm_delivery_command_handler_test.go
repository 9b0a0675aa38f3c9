package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/pkg/errs"
)

func arrivedDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	d := pendingDelivery(t)
	drv := availableDriver(t, 6.9010, 79.8510)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, d.AssignDriver(drv.ID(), drv.Location(), now))
	require.NoError(t, d.ArriveAtRestaurant(now.Add(time.Minute)))
	require.NoError(t, d.Resume(now.Add(2*time.Minute)))
	require.NoError(t, d.Arrive(now.Add(3*time.Minute)))
	return d
}

func Test_ConfirmDeliveryCommandHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms_frees_driver_and_notifies", func(t *testing.T) {
		// Given
		d := arrivedDelivery(t)
		drv := availableDriver(t, 6.9010, 79.8510)
		require.NoError(t, drv.MarkBusy())

		deliveries := &MockDeliveryRepository{}
		drivers := &MockDriverRepository{}
		deliveries.On("CompareAndSetStatus", ctx, d.ID(), delivery.Arrived, delivery.Confirmed, mock.Anything).
			Return(nil)
		deliveries.On("Get", ctx, d.ID()).Return(d, nil)
		drivers.On("Get", ctx, *d.Driver()).Return(drv, nil)
		drivers.On("Update", ctx, drv).Return(nil)

		uow := &MockUoW{deliveries: deliveries, drivers: drivers}
		emitter := &MockEmitter{}
		emitter.On("StopTracking", d.ID()).Return()
		publisher := &MockPublisher{}
		publisher.On("Publish", ctx, mock.MatchedBy(func(e delivery.PositionUpdateEvent) bool {
			return e.Phase != nil && *e.Phase == delivery.Confirmed && e.DeliveryID.IsEqual(d.ID())
		})).Return(nil)

		handler := commands.NewConfirmDeliveryCommandHandler(MockUoWFactory{uow: uow}, emitter, publisher)
		cmd, err := commands.NewConfirmDeliveryCommand(d.ID())
		require.NoError(t, err)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.True(t, uow.committed)
		assert.True(t, drv.IsAvailable())
		deliveries.AssertExpectations(t)
		drivers.AssertExpectations(t)
		emitter.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("racing_terminal_write_loses_cleanly", func(t *testing.T) {
		// Given: the stored status is no longer Arrived
		d := arrivedDelivery(t)
		deliveries := &MockDeliveryRepository{}
		invalid := errs.NewInvalidDeliveryStateError("confirm", delivery.Cancelled.String())
		deliveries.On("CompareAndSetStatus", ctx, d.ID(), delivery.Arrived, delivery.Confirmed, mock.Anything).
			Return(invalid)

		uow := &MockUoW{deliveries: deliveries, drivers: &MockDriverRepository{}}
		emitter := &MockEmitter{}
		publisher := &MockPublisher{}

		handler := commands.NewConfirmDeliveryCommandHandler(MockUoWFactory{uow: uow}, emitter, publisher)
		cmd, err := commands.NewConfirmDeliveryCommand(d.ID())
		require.NoError(t, err)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		assert.ErrorIs(t, err, errs.ErrInvalidDeliveryState)
		assert.False(t, uow.committed)
		emitter.AssertNotCalled(t, "StopTracking", d.ID())
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("rejects_zero_value_command", func(t *testing.T) {
		handler := commands.NewConfirmDeliveryCommandHandler(
			MockUoWFactory{uow: &MockUoW{}}, &MockEmitter{}, &MockPublisher{})

		err := handler.Handle(ctx, commands.ConfirmDeliveryCommand{})

		assert.ErrorIs(t, err, commands.ErrConfirmDeliveryCommandIsNotConstructed)
	})
}
