package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
)

// RoutePlanner computes drivable routes between geographic points.
//
// Implementations wrap an external routing service; failures and empty
// results surface as errs.RouteUnavailableError so callers can distinguish
// "no route" from transport faults they might retry.
type RoutePlanner interface {
	// ComputeRoute returns an ordered sequence of points from origin to
	// destination, passing through any waypoints in order. The returned plan
	// always starts at origin and ends at destination.
	ComputeRoute(ctx context.Context, origin kernel.Location, destination kernel.Location, waypoints ...kernel.Location) (kernel.RoutePlan, error)

	// ComputeDistance returns the distance in meters between two points as
	// measured by the routing backend.
	ComputeDistance(ctx context.Context, from kernel.Location, to kernel.Location) (float64, error)
}
