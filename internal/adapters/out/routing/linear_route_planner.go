package routing

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
)

// DefaultStepsPerLeg is how many segments a leg is divided into when routes
// are synthesized instead of fetched.
const DefaultStepsPerLeg = 4

// LinearRoutePlanner synthesizes straight-line routes by dividing each leg
// into evenly spaced points. Used when no Maps API key is configured, so the
// system remains fully operable in development and in tests.
//
// Implements ports.RoutePlanner.
type LinearRoutePlanner struct {
	stepsPerLeg int
}

// NewLinearRoutePlanner creates a planner dividing each leg into steps
// segments. Non-positive steps fall back to DefaultStepsPerLeg.
func NewLinearRoutePlanner(steps int) *LinearRoutePlanner {
	if steps <= 0 {
		steps = DefaultStepsPerLeg
	}
	return &LinearRoutePlanner{stepsPerLeg: steps}
}

// ComputeRoute builds an evenly spaced point sequence from origin through the
// waypoints to destination. Each leg contributes stepsPerLeg segments.
func (p *LinearRoutePlanner) ComputeRoute(
	_ context.Context,
	origin kernel.Location,
	destination kernel.Location,
	waypoints ...kernel.Location,
) (kernel.RoutePlan, error) {
	stops := make([]kernel.Location, 0, len(waypoints)+2)
	stops = append(stops, origin)
	stops = append(stops, waypoints...)
	stops = append(stops, destination)

	points := []kernel.Location{origin}
	for i := 1; i < len(stops); i++ {
		leg, err := interpolateLeg(stops[i-1], stops[i], p.stepsPerLeg)
		if err != nil {
			return kernel.RoutePlan{}, err
		}
		points = append(points, leg...)
	}

	return kernel.NewRoutePlan(points)
}

// ComputeDistance returns the great-circle distance in meters.
func (p *LinearRoutePlanner) ComputeDistance(_ context.Context, from kernel.Location, to kernel.Location) (float64, error) {
	return from.DistanceTo(to)
}

// interpolateLeg returns steps points from just after `from` up to and
// including `to`.
func interpolateLeg(from, to kernel.Location, steps int) ([]kernel.Location, error) {
	points := make([]kernel.Location, 0, steps)
	for s := 1; s <= steps; s++ {
		fraction := float64(s) / float64(steps)
		lat := from.Latitude() + (to.Latitude()-from.Latitude())*fraction
		lng := from.Longitude() + (to.Longitude()-from.Longitude())*fraction

		point, err := kernel.NewLocation(lat, lng)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}
