package delivery

import (
	"tracking/internal/core/domain/model/kernel"
)

// DefaultProximityThresholdMeters is the distance below which a driver is
// considered to have reached the restaurant.
const DefaultProximityThresholdMeters = 100.0

// PhaseDecision is the outcome of evaluating the phase state machine after a
// position step. Changed is false when the delivery stays in its current
// phase; when true, Next holds the phase to transition to and HaltLoop
// reports whether the movement loop must stop advancing.
type PhaseDecision struct {
	Next     Status
	Changed  bool
	HaltLoop bool
}

// NextPhase evaluates the phase state machine for one emitter step.
// It is a pure function: the emitter owns all side effects.
//
// Parameters:
//   - current: the delivery's phase before the step
//   - position: the driver position just written
//   - plan: the active leg's route plan
//   - stepIndex: the index of position within plan
//   - restaurant: the restaurant location
//   - thresholdMeters: the restaurant proximity threshold
//
// Decision rules:
//   - ToRestaurant: transition to AtRestaurant on the first position whose
//     great-circle distance to the restaurant drops below thresholdMeters.
//     The loop halts; the delivery waits for an explicit resume.
//   - ToDestination: transition to Arrived when stepIndex addresses the final
//     point of the plan. No distance check is applied on this edge.
//   - All other phases: no transition.
func NextPhase(
	current Status,
	position kernel.Location,
	plan kernel.RoutePlan,
	stepIndex int,
	restaurant kernel.Location,
	thresholdMeters float64,
) (PhaseDecision, error) {
	switch current {
	case ToRestaurant:
		distance, err := position.DistanceTo(restaurant)
		if err != nil {
			return PhaseDecision{}, err
		}
		if distance < thresholdMeters {
			return PhaseDecision{Next: AtRestaurant, Changed: true, HaltLoop: true}, nil
		}

	case ToDestination:
		if err := plan.Validate(); err != nil {
			return PhaseDecision{}, err
		}
		if plan.IsLastIndex(stepIndex) {
			return PhaseDecision{Next: Arrived, Changed: true, HaltLoop: true}, nil
		}

	default:
		// No automatic transitions outside the two moving phases.
	}

	return PhaseDecision{Next: current}, nil
}
