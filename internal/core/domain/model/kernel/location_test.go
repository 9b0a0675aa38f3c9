package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		wantErr   bool
	}{
		{
			name:      "valid location",
			latitude:  6.9000,
			longitude: 79.8500,
			wantErr:   false,
		},
		{
			name:      "valid location at min bounds",
			latitude:  kernel.LocationMinLatitude,
			longitude: kernel.LocationMinLongitude,
			wantErr:   false,
		},
		{
			name:      "valid location at max bounds",
			latitude:  kernel.LocationMaxLatitude,
			longitude: kernel.LocationMaxLongitude,
			wantErr:   false,
		},
		{
			name:      "latitude too small",
			latitude:  -90.5,
			longitude: 0,
			wantErr:   true,
		},
		{
			name:      "latitude too large",
			latitude:  90.5,
			longitude: 0,
			wantErr:   true,
		},
		{
			name:      "longitude too small",
			latitude:  0,
			longitude: -180.5,
			wantErr:   true,
		},
		{
			name:      "longitude too large",
			latitude:  0,
			longitude: 180.5,
			wantErr:   true,
		},
		{
			name:      "both coordinates invalid",
			latitude:  -91,
			longitude: 181,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.latitude, tt.longitude)

			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.latitude, loc.Latitude(), 1e-12)
			assert.InDelta(t, tt.longitude, loc.Longitude(), 1e-12)
			require.NoError(t, loc.Validate())
		})
	}
}

func TestNewAddressedLocation(t *testing.T) {
	t.Run("carries_address", func(t *testing.T) {
		loc, err := kernel.NewAddressedLocation(6.9271, 79.8612, "Galle Road, Colombo")

		require.NoError(t, err)
		assert.Equal(t, "Galle Road, Colombo", loc.Address())
	})

	t.Run("address_does_not_affect_equality", func(t *testing.T) {
		a, _ := kernel.NewAddressedLocation(6.9, 79.85, "Restaurant")
		b, _ := kernel.NewLocation(6.9, 79.85)

		equal, err := a.IsEqual(b)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("rejects_out_of_range_coordinates", func(t *testing.T) {
		_, err := kernel.NewAddressedLocation(100, 0, "nowhere")
		require.Error(t, err)
	})
}

func TestLocation_Validate(t *testing.T) {
	t.Run("zero_value_is_invalid", func(t *testing.T) {
		var loc kernel.Location

		err := loc.Validate()

		require.Error(t, err)
		assert.Equal(t, kernel.ErrLocationIsNotConstructed, err)
	})
}

func TestLocation_DistanceTo(t *testing.T) {
	t.Run("distance_to_self_is_zero", func(t *testing.T) {
		loc, _ := kernel.NewLocation(6.9000, 79.8500)

		d, err := loc.DistanceTo(loc)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("known_distance_along_meridian", func(t *testing.T) {
		// One degree of latitude is roughly 111.19 km on a 6371 km sphere.
		a, _ := kernel.NewLocation(6.0, 79.85)
		b, _ := kernel.NewLocation(7.0, 79.85)

		d, err := a.DistanceTo(b)

		require.NoError(t, err)
		assert.InDelta(t, 111_195, d, 100)
	})

	t.Run("distance_is_symmetric", func(t *testing.T) {
		a, _ := kernel.NewLocation(6.9000, 79.8500)
		b, _ := kernel.NewLocation(6.9100, 79.8600)

		d1, err1 := a.DistanceTo(b)
		d2, err2 := b.DistanceTo(a)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("unconstructed_location_fails", func(t *testing.T) {
		var zero kernel.Location
		loc, _ := kernel.NewLocation(6.9, 79.85)

		_, err := loc.DistanceTo(zero)

		require.Error(t, err)
	})
}
