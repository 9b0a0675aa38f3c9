package kernel

import (
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

// ErrRoutePlanIsNotConstructed is returned when attempting to use an improperly
// initialized RoutePlan. Plans must be created via NewRoutePlan.
var ErrRoutePlanIsNotConstructed = errs.NewValueIsRequiredError(
	"route plan must be created via NewRoutePlan constructor")

// ErrRoutePlanIsEmpty is returned when attempting to create a RoutePlan with
// no points.
var ErrRoutePlanIsEmpty = errs.NewValueIsRequiredError("route plan points")

// RoutePlan is an ordered, immutable sequence of geographic points
// approximating the road path of one delivery leg. A plan is computed once
// per leg and discarded when the leg restarts.
//
// The emitter walks the plan one point per tick; a leg is complete when the
// walk index reaches the last point.
type RoutePlan struct {
	points []Location
	guard  guard.ConstructorGuard
}

// NewRoutePlan creates a RoutePlan from an ordered sequence of points.
// The input slice is copied so later mutation of the argument cannot affect
// the plan. At least one point is required and every point must be a
// properly constructed Location.
func NewRoutePlan(points []Location) (RoutePlan, error) {
	if len(points) == 0 {
		return RoutePlan{}, ErrRoutePlanIsEmpty
	}

	copied := make([]Location, len(points))
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return RoutePlan{}, err
		}
		copied[i] = p
	}

	return RoutePlan{
		points: copied,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the RoutePlan was properly constructed via NewRoutePlan.
func (r RoutePlan) Validate() error {
	return r.guard.Validate(ErrRoutePlanIsNotConstructed)
}

// Len returns the number of points in the plan.
func (r RoutePlan) Len() int {
	return len(r.points)
}

// Point returns the point at the given index.
// Returns an error if the index is outside [0..Len()-1].
func (r RoutePlan) Point(index int) (Location, error) {
	if err := r.Validate(); err != nil {
		return Location{}, err
	}

	if index < 0 || index >= len(r.points) {
		return Location{}, errs.NewValueIsOutOfRangeError("index", index, 0, len(r.points)-1)
	}

	return r.points[index], nil
}

// Last returns the final point of the plan.
func (r RoutePlan) Last() (Location, error) {
	return r.Point(len(r.points) - 1)
}

// IsLastIndex reports whether the given index addresses the final point.
// Destination arrival is detected by route exhaustion, not by proximity.
func (r RoutePlan) IsLastIndex(index int) bool {
	return index == len(r.points)-1
}

// Points returns a copy of the plan's points, preserving immutability.
func (r RoutePlan) Points() []Location {
	out := make([]Location, len(r.points))
	copy(out, r.points)
	return out
}
