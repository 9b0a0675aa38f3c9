package delivery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

func sameLocation(t *testing.T, got, want kernel.Location) bool {
	t.Helper()
	ok, err := got.IsEqual(want)
	require.NoError(t, err)
	return ok
}

func fixtureDelivery(t *testing.T, now time.Time) *delivery.Delivery {
	t.Helper()

	restaurant := mustLocation(t, 6.9000, 79.8500)
	destination := mustLocation(t, 6.9100, 79.8600)

	d, err := delivery.NewDelivery(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		restaurant, destination, now)
	require.NoError(t, err)
	return d
}

func Test_NewDelivery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("starts_pending_with_single_history_entry", func(t *testing.T) {
		d := fixtureDelivery(t, now)

		assert.Equal(t, delivery.Pending, d.Status())
		assert.Nil(t, d.Driver())
		assert.Nil(t, d.Position())
		assert.Equal(t, now, d.UpdatedAt())

		history := d.History()
		require.Len(t, history, 1)
		assert.Equal(t, delivery.Pending, history[0].Status)
		assert.Equal(t, now, history[0].Timestamp)
	})

	t.Run("returns_error_for_empty_ids", func(t *testing.T) {
		restaurant := mustLocation(t, 6.9000, 79.8500)
		destination := mustLocation(t, 6.9100, 79.8600)

		_, err := delivery.NewDelivery(
			kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(),
			restaurant, destination, now)

		assert.Error(t, err)
	})

	t.Run("default_constructed_is_invalid", func(t *testing.T) {
		var d delivery.Delivery

		assert.Error(t, d.Validate())
	})
}

func Test_Delivery_Lifecycle(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	driverID := kernel.NewUUID()

	t.Run("full_happy_path_appends_history", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		startPos := mustLocation(t, 6.9200, 79.8400)

		steps := []struct {
			apply func(time.Time) error
			want  delivery.Status
		}{
			{func(ts time.Time) error { return d.AssignDriver(driverID, startPos, ts) }, delivery.ToRestaurant},
			{d.ArriveAtRestaurant, delivery.AtRestaurant},
			{d.Resume, delivery.ToDestination},
			{d.Arrive, delivery.Arrived},
			{d.Confirm, delivery.Confirmed},
		}

		ts := start
		for _, step := range steps {
			ts = ts.Add(time.Minute)
			require.NoError(t, step.apply(ts))
			assert.Equal(t, step.want, d.Status())
			assert.Equal(t, ts, d.UpdatedAt())
		}

		history := d.History()
		require.Len(t, history, 6)
		assert.Equal(t, delivery.Pending, history[0].Status)
		assert.Equal(t, delivery.Confirmed, history[5].Status)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
		}

		require.NotNil(t, d.Driver())
		assert.True(t, d.Driver().IsEqual(driverID))
	})

	t.Run("assign_records_start_position", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		startPos := mustLocation(t, 6.9200, 79.8400)

		require.NoError(t, d.AssignDriver(driverID, startPos, start.Add(time.Minute)))

		require.NotNil(t, d.Position())
		assert.True(t, sameLocation(t, *d.Position(), startPos))
	})

	t.Run("earlier_timestamp_is_clamped_to_last_entry", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		startPos := mustLocation(t, 6.9200, 79.8400)

		// Clock skew: the caller's timestamp is behind the last history entry.
		require.NoError(t, d.AssignDriver(driverID, startPos, start.Add(-time.Hour)))

		history := d.History()
		require.Len(t, history, 2)
		assert.Equal(t, history[0].Timestamp, history[1].Timestamp)
	})

	t.Run("invalid_transitions_are_rejected", func(t *testing.T) {
		d := fixtureDelivery(t, start)

		assert.ErrorIs(t, d.Resume(start), errs.ErrInvalidDeliveryState)
		assert.ErrorIs(t, d.Confirm(start), errs.ErrInvalidDeliveryState)
		assert.Equal(t, delivery.Pending, d.Status())
		assert.Len(t, d.History(), 1)
	})

	t.Run("cancel_from_any_non_terminal", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		startPos := mustLocation(t, 6.9200, 79.8400)
		require.NoError(t, d.AssignDriver(driverID, startPos, start))

		require.NoError(t, d.Cancel(start.Add(time.Minute)))

		assert.Equal(t, delivery.Cancelled, d.Status())
		assert.ErrorIs(t, d.Cancel(start.Add(2*time.Minute)), errs.ErrInvalidDeliveryState)
	})

	t.Run("fail_halts_but_allows_cancel", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		startPos := mustLocation(t, 6.9200, 79.8400)
		require.NoError(t, d.AssignDriver(driverID, startPos, start))

		require.NoError(t, d.Fail(start.Add(time.Minute)))
		assert.Equal(t, delivery.Error, d.Status())

		require.NoError(t, d.Cancel(start.Add(2*time.Minute)))
		assert.Equal(t, delivery.Cancelled, d.Status())
	})
}

func Test_Delivery_UpdatePosition(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	driverID := kernel.NewUUID()

	t.Run("accepted_while_moving", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		require.NoError(t, d.AssignDriver(driverID, mustLocation(t, 6.9200, 79.8400), start))

		next := mustLocation(t, 6.9150, 79.8450)
		require.NoError(t, d.UpdatePosition(next, start.Add(10*time.Second)))

		require.NotNil(t, d.Position())
		assert.True(t, sameLocation(t, *d.Position(), next))
		// Position updates do not touch the status history.
		assert.Len(t, d.History(), 2)
	})

	t.Run("rejected_while_pending", func(t *testing.T) {
		d := fixtureDelivery(t, start)

		err := d.UpdatePosition(mustLocation(t, 6.9150, 79.8450), start)

		assert.ErrorIs(t, err, errs.ErrInvalidDeliveryState)
	})

	t.Run("rejected_after_arrival", func(t *testing.T) {
		d := fixtureDelivery(t, start)
		require.NoError(t, d.AssignDriver(driverID, mustLocation(t, 6.9200, 79.8400), start))
		require.NoError(t, d.ArriveAtRestaurant(start))

		err := d.UpdatePosition(mustLocation(t, 6.9150, 79.8450), start)

		assert.ErrorIs(t, err, errs.ErrInvalidDeliveryState)
	})
}

func Test_RestoreDelivery(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	restaurant := mustLocation(t, 6.9000, 79.8500)
	destination := mustLocation(t, 6.9100, 79.8600)
	id, orderID, customerID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	validHistory := []delivery.StatusRecord{
		{Status: delivery.Pending, Timestamp: start},
		{Status: delivery.ToRestaurant, Timestamp: start.Add(time.Minute)},
	}

	t.Run("restores_full_state", func(t *testing.T) {
		driverID := kernel.NewUUID()
		position := mustLocation(t, 6.9200, 79.8400)

		d, err := delivery.RestoreDelivery(
			id, orderID, customerID, restaurant, destination,
			&driverID, &position,
			delivery.ToRestaurant, validHistory, start.Add(time.Minute))
		require.NoError(t, err)

		assert.Equal(t, delivery.ToRestaurant, d.Status())
		assert.True(t, d.Driver().IsEqual(driverID))
		assert.True(t, sameLocation(t, *d.Position(), position))
		assert.Len(t, d.History(), 2)
	})

	t.Run("rejects_empty_history", func(t *testing.T) {
		_, err := delivery.RestoreDelivery(
			id, orderID, customerID, restaurant, destination,
			nil, nil, delivery.Pending, nil, start)

		assert.ErrorIs(t, err, delivery.ErrHistoryIsCorrupted)
	})

	t.Run("rejects_out_of_order_history", func(t *testing.T) {
		broken := []delivery.StatusRecord{
			{Status: delivery.Pending, Timestamp: start.Add(time.Minute)},
			{Status: delivery.ToRestaurant, Timestamp: start},
		}

		_, err := delivery.RestoreDelivery(
			id, orderID, customerID, restaurant, destination,
			nil, nil, delivery.ToRestaurant, broken, start)

		assert.ErrorIs(t, err, delivery.ErrHistoryIsCorrupted)
	})

	t.Run("rejects_history_tail_mismatch", func(t *testing.T) {
		_, err := delivery.RestoreDelivery(
			id, orderID, customerID, restaurant, destination,
			nil, nil, delivery.AtRestaurant, validHistory, start)

		assert.ErrorIs(t, err, delivery.ErrHistoryIsCorrupted)
	})

	t.Run("history_getter_returns_copy", func(t *testing.T) {
		d, err := delivery.RestoreDelivery(
			id, orderID, customerID, restaurant, destination,
			nil, nil, delivery.ToRestaurant, validHistory, start.Add(time.Minute))
		require.NoError(t, err)

		d.History()[0].Status = delivery.Cancelled

		assert.Equal(t, delivery.Pending, d.History()[0].Status)
	})
}
