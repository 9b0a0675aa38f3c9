package observer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/observer"
)

const interval = 10 * time.Second

func mustLocation(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return loc
}

func event(t *testing.T, lat, lng float64, at time.Time) delivery.PositionUpdateEvent {
	t.Helper()
	return delivery.NewPositionEvent(kernel.NewUUID(), mustLocation(t, lat, lng), interval, at)
}

func Test_Interpolator_LinearWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	i := observer.NewInterpolator()
	applied, err := i.Apply(event(t, 6.9000, 79.8500, base), base)
	require.NoError(t, err)
	require.True(t, applied)

	// Second event opens a window from (6.9000, 79.8500) to (6.9100, 79.8600).
	applied, err = i.Apply(event(t, 6.9100, 79.8600, base.Add(interval)), base.Add(interval))
	require.NoError(t, err)
	require.True(t, applied)
	start := base.Add(interval)

	cases := []struct {
		name     string
		progress float64
	}{
		{"window_start", 0},
		{"quarter", 0.25},
		{"half", 0.5},
		{"three_quarters", 0.75},
		{"window_end", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			at := start.Add(time.Duration(tc.progress * float64(interval)))
			pos := i.PositionAt(at)

			assert.InDelta(t, 6.9000+0.0100*tc.progress, pos.Latitude(), 1e-9)
			assert.InDelta(t, 79.8500+0.0100*tc.progress, pos.Longitude(), 1e-9)
		})
	}

	t.Run("holds_position_after_window", func(t *testing.T) {
		pos := i.PositionAt(start.Add(3 * interval))

		assert.InDelta(t, 6.9100, pos.Latitude(), 1e-9)
		assert.InDelta(t, 79.8600, pos.Longitude(), 1e-9)
	})
}

func Test_Interpolator_RetriggerContinuity(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	i := observer.NewInterpolator()
	_, err := i.Apply(event(t, 6.9000, 79.8500, base), base)
	require.NoError(t, err)
	_, err = i.Apply(event(t, 6.9100, 79.8600, base.Add(interval)), base.Add(interval))
	require.NoError(t, err)
	start := base.Add(interval)

	// A new event lands halfway through the window. The marker is at the
	// midpoint; the new window must start exactly there, not at the previous
	// event's endpoint.
	mid := start.Add(interval / 2)
	midpoint := i.PositionAt(mid)
	assert.InDelta(t, 6.9050, midpoint.Latitude(), 1e-9)

	_, err = i.Apply(event(t, 6.9200, 79.8700, mid), mid)
	require.NoError(t, err)

	t.Run("no_backward_jump_at_retrigger", func(t *testing.T) {
		pos := i.PositionAt(mid)
		assert.InDelta(t, midpoint.Latitude(), pos.Latitude(), 1e-9)
		assert.InDelta(t, midpoint.Longitude(), pos.Longitude(), 1e-9)
	})

	t.Run("new_window_interpolates_from_midpoint", func(t *testing.T) {
		pos := i.PositionAt(mid.Add(interval / 2))
		assert.InDelta(t, 6.9050+(6.9200-6.9050)*0.5, pos.Latitude(), 1e-9)
	})
}

func Test_Interpolator_DiscardsStaleEvents(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	i := observer.NewInterpolator()
	_, err := i.Apply(event(t, 6.9000, 79.8500, base.Add(interval)), base.Add(interval))
	require.NoError(t, err)

	// An event stamped earlier than the last applied one arrives late.
	applied, err := i.Apply(event(t, 6.8000, 79.8000, base), base.Add(interval+time.Second))
	require.NoError(t, err)

	assert.False(t, applied)
	pos := i.PositionAt(base.Add(interval + time.Second))
	assert.InDelta(t, 6.9000, pos.Latitude(), 1e-9)
}

func Test_Interpolator_Staleness(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh_feed_is_not_stale", func(t *testing.T) {
		i := observer.NewInterpolator()
		_, err := i.Apply(event(t, 6.9000, 79.8500, base), base)
		require.NoError(t, err)

		assert.False(t, i.IsStale(base.Add(2*interval)))
	})

	t.Run("quiet_feed_goes_stale_past_the_factor", func(t *testing.T) {
		i := observer.NewInterpolator()
		_, err := i.Apply(event(t, 6.9000, 79.8500, base), base)
		require.NoError(t, err)

		assert.True(t, i.IsStale(base.Add(3*interval)))
	})

	t.Run("unprimed_interpolator_is_never_stale", func(t *testing.T) {
		i := observer.NewInterpolator()

		assert.False(t, i.IsStale(base.Add(time.Hour)))
		assert.False(t, i.Primed())
	})

	t.Run("fresh_event_resets_staleness", func(t *testing.T) {
		i := observer.NewInterpolator()
		_, err := i.Apply(event(t, 6.9000, 79.8500, base), base)
		require.NoError(t, err)

		later := base.Add(3 * interval)
		require.True(t, i.IsStale(later))

		_, err = i.Apply(event(t, 6.9100, 79.8600, later), later)
		require.NoError(t, err)

		assert.False(t, i.IsStale(later.Add(interval)))
	})
}
