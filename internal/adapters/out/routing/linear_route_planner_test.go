package routing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/adapters/out/routing"
	"tracking/internal/core/domain/model/kernel"
)

func mustLocation(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return loc
}

func sameLocation(t *testing.T, got, want kernel.Location) bool {
	t.Helper()
	ok, err := got.IsEqual(want)
	require.NoError(t, err)
	return ok
}

func Test_LinearRoutePlanner_ComputeRoute(t *testing.T) {
	ctx := context.Background()
	origin := mustLocation(t, 6.9200, 79.8400)
	restaurant := mustLocation(t, 6.9000, 79.8500)
	destination := mustLocation(t, 6.9100, 79.8600)

	t.Run("single_leg_endpoints_and_spacing", func(t *testing.T) {
		planner := routing.NewLinearRoutePlanner(4)

		plan, err := planner.ComputeRoute(ctx, origin, restaurant)
		require.NoError(t, err)

		require.Equal(t, 5, plan.Len())
		first, err := plan.Point(0)
		require.NoError(t, err)
		assert.True(t, sameLocation(t, first, origin))
		last, err := plan.Last()
		require.NoError(t, err)
		assert.True(t, sameLocation(t, last, restaurant))

		mid, err := plan.Point(2)
		require.NoError(t, err)
		assert.InDelta(t, (origin.Latitude()+restaurant.Latitude())/2, mid.Latitude(), 1e-9)
		assert.InDelta(t, (origin.Longitude()+restaurant.Longitude())/2, mid.Longitude(), 1e-9)
	})

	t.Run("waypoints_split_the_route_into_legs", func(t *testing.T) {
		planner := routing.NewLinearRoutePlanner(4)

		plan, err := planner.ComputeRoute(ctx, origin, destination, restaurant)
		require.NoError(t, err)

		// Two legs of four segments plus the origin.
		require.Equal(t, 9, plan.Len())
		viaRestaurant, err := plan.Point(4)
		require.NoError(t, err)
		assert.True(t, sameLocation(t, viaRestaurant, restaurant))
		last, err := plan.Last()
		require.NoError(t, err)
		assert.True(t, sameLocation(t, last, destination))
	})

	t.Run("non_positive_steps_fall_back_to_default", func(t *testing.T) {
		planner := routing.NewLinearRoutePlanner(0)

		plan, err := planner.ComputeRoute(ctx, origin, restaurant)
		require.NoError(t, err)

		assert.Equal(t, routing.DefaultStepsPerLeg+1, plan.Len())
	})
}

func Test_LinearRoutePlanner_ComputeDistance(t *testing.T) {
	planner := routing.NewLinearRoutePlanner(4)

	// One degree of latitude is about 111.2 km.
	from := mustLocation(t, 6.0, 79.85)
	to := mustLocation(t, 7.0, 79.85)

	dist, err := planner.ComputeDistance(context.Background(), from, to)

	require.NoError(t, err)
	assert.InDelta(t, 111_195, dist, 200)
}
