package delivery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

func mustLocation(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return loc
}

func mustPlan(t *testing.T, coords ...[2]float64) kernel.RoutePlan {
	t.Helper()
	points := make([]kernel.Location, 0, len(coords))
	for _, c := range coords {
		points = append(points, mustLocation(t, c[0], c[1]))
	}
	plan, err := kernel.NewRoutePlan(points)
	require.NoError(t, err)
	return plan
}

// walkToRestaurant advances through the plan evaluating the phase machine at
// each point and returns the index at which AtRestaurant was decided, or -1.
func walkToRestaurant(t *testing.T, plan kernel.RoutePlan, restaurant kernel.Location, threshold float64) int {
	t.Helper()
	for i := 0; i < plan.Len(); i++ {
		point, err := plan.Point(i)
		require.NoError(t, err)

		decision, err := delivery.NextPhase(
			delivery.ToRestaurant, point, plan, i, restaurant, threshold)
		require.NoError(t, err)

		if decision.Changed {
			assert.Equal(t, delivery.AtRestaurant, decision.Next)
			assert.True(t, decision.HaltLoop)
			return i
		}
	}
	return -1
}

func TestNextPhase_RestaurantProximity(t *testing.T) {
	restaurant := mustLocation(t, 6.9000, 79.8500)
	const threshold = 100.0

	// 0.0008 degrees of latitude is ≈89 m, inside the 100 m threshold;
	// 0.0020 degrees is ≈222 m, outside it.
	t.Run("straight_line_approach", func(t *testing.T) {
		plan := mustPlan(t,
			[2]float64{6.9100, 79.8500},
			[2]float64{6.9050, 79.8500},
			[2]float64{6.9020, 79.8500},
			[2]float64{6.9008, 79.8500},
			[2]float64{6.9000, 79.8500},
		)

		assert.Equal(t, 3, walkToRestaurant(t, plan, restaurant, threshold))
	})

	t.Run("l_shaped_approach", func(t *testing.T) {
		plan := mustPlan(t,
			[2]float64{6.9100, 79.8600},
			[2]float64{6.9100, 79.8500},
			[2]float64{6.9050, 79.8500},
			[2]float64{6.9008, 79.8500},
			[2]float64{6.9000, 79.8500},
		)

		assert.Equal(t, 3, walkToRestaurant(t, plan, restaurant, threshold))
	})

	t.Run("starting_point_already_within_threshold", func(t *testing.T) {
		plan := mustPlan(t,
			[2]float64{6.90005, 79.8500},
			[2]float64{6.9000, 79.8500},
		)

		assert.Equal(t, 0, walkToRestaurant(t, plan, restaurant, threshold))
	})
}

func TestNextPhase_DestinationExhaustion(t *testing.T) {
	restaurant := mustLocation(t, 6.9000, 79.8500)
	plan := mustPlan(t,
		[2]float64{6.9000, 79.8500},
		[2]float64{6.9050, 79.8550},
		[2]float64{6.9100, 79.8600},
	)

	t.Run("no_transition_before_last_index", func(t *testing.T) {
		for i := 0; i < plan.Len()-1; i++ {
			point, err := plan.Point(i)
			require.NoError(t, err)

			decision, err := delivery.NextPhase(
				delivery.ToDestination, point, plan, i, restaurant, 100)
			require.NoError(t, err)
			assert.False(t, decision.Changed, "index %d", i)
		}
	})

	t.Run("arrives_on_last_index", func(t *testing.T) {
		last, err := plan.Last()
		require.NoError(t, err)

		decision, err := delivery.NextPhase(
			delivery.ToDestination, last, plan, plan.Len()-1, restaurant, 100)
		require.NoError(t, err)

		assert.True(t, decision.Changed)
		assert.Equal(t, delivery.Arrived, decision.Next)
		assert.True(t, decision.HaltLoop)
	})

	t.Run("no_proximity_check_on_destination_leg", func(t *testing.T) {
		// A mid-route point sitting right on the restaurant must not trigger
		// any transition while heading to the destination.
		onRestaurant := mustLocation(t, 6.9000, 79.8500)

		decision, err := delivery.NextPhase(
			delivery.ToDestination, onRestaurant, plan, 0, restaurant, 100)
		require.NoError(t, err)
		assert.False(t, decision.Changed)
	})
}

func TestNextPhase_InertPhases(t *testing.T) {
	restaurant := mustLocation(t, 6.9000, 79.8500)
	plan := mustPlan(t, [2]float64{6.9000, 79.8500}, [2]float64{6.9100, 79.8600})
	onRestaurant := mustLocation(t, 6.9000, 79.8500)

	for _, s := range []delivery.Status{
		delivery.Pending, delivery.AtRestaurant, delivery.Arrived,
		delivery.Confirmed, delivery.Cancelled, delivery.Error,
	} {
		t.Run(s.String(), func(t *testing.T) {
			decision, err := delivery.NextPhase(s, onRestaurant, plan, 1, restaurant, 100)

			require.NoError(t, err)
			assert.False(t, decision.Changed)
			assert.Equal(t, s, decision.Next)
		})
	}
}
