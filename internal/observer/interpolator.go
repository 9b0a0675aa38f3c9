package observer

import (
	"time"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

// DefaultStaleFactor is how many emission intervals may pass without a fresh
// event before the interpolated position is considered stale and the client
// should re-fetch a registry snapshot.
const DefaultStaleFactor = 2.5

// Interpolator smooths the discrete position events of one delivery into
// continuous movement. Between events it moves the marker linearly from the
// previously displayed position to the latest reported one over the event's
// own interval.
//
// The type is a plain value driven entirely by the caller's clock, which
// keeps rendering code and tests deterministic. It is not safe for
// concurrent use.
type Interpolator struct {
	prev        kernel.Location
	next        kernel.Location
	window      time.Duration
	windowStart time.Time
	lastApplied time.Time
	staleFactor float64
	primed      bool
}

// NewInterpolator creates an Interpolator with the default staleness factor.
func NewInterpolator() *Interpolator {
	return &Interpolator{staleFactor: DefaultStaleFactor}
}

// NewInterpolatorWithStaleFactor creates an Interpolator that flags staleness
// after the given multiple of the event interval.
func NewInterpolatorWithStaleFactor(factor float64) *Interpolator {
	if factor <= 0 {
		factor = DefaultStaleFactor
	}
	return &Interpolator{staleFactor: factor}
}

// Apply feeds the next event into the interpolator at wall time now.
//
// Events that are not newer than the last applied one are discarded and
// reported as such: fan-out order is not guaranteed, and rewinding the
// marker for a stale event looks worse than skipping it.
//
// When an event lands mid-window the new window starts from the position
// currently displayed, not from the previous event's endpoint, so the marker
// never jumps backwards.
func (i *Interpolator) Apply(event delivery.PositionUpdateEvent, now time.Time) (applied bool, err error) {
	if event.Position == nil {
		return false, errs.NewValueIsRequiredError("position")
	}

	if i.primed && !event.IsNewerThan(i.lastApplied) {
		return false, nil
	}

	if !i.primed {
		// First event: snap, no window to animate over.
		i.prev = *event.Position
	} else {
		i.prev = i.PositionAt(now)
	}

	i.next = *event.Position
	i.window = event.Interval
	i.windowStart = now
	i.lastApplied = event.Timestamp
	i.primed = true
	return true, nil
}

// PositionAt returns the interpolated position at wall time now. Before the
// first event it returns the zero Location; after the window is exhausted it
// holds at the latest reported position.
func (i *Interpolator) PositionAt(now time.Time) kernel.Location {
	if !i.primed {
		return kernel.Location{}
	}

	progress := i.progress(now)
	if progress >= 1 {
		return i.next
	}

	lat := i.prev.Latitude() + (i.next.Latitude()-i.prev.Latitude())*progress
	lng := i.prev.Longitude() + (i.next.Longitude()-i.prev.Longitude())*progress

	pos, err := kernel.NewLocation(lat, lng)
	if err != nil {
		// Both endpoints were valid, so the segment between them is too.
		return i.next
	}
	return pos
}

// IsStale reports whether the feed has gone quiet: no event has been applied
// for more than staleFactor intervals. A stale interpolator keeps reporting
// the last position; the caller should re-fetch a snapshot and resubscribe.
func (i *Interpolator) IsStale(now time.Time) bool {
	if !i.primed || i.window <= 0 {
		return false
	}

	silence := now.Sub(i.windowStart)
	return silence > time.Duration(i.staleFactor*float64(i.window))
}

// Primed reports whether at least one event has been applied.
func (i *Interpolator) Primed() bool {
	return i.primed
}

func (i *Interpolator) progress(now time.Time) float64 {
	if i.window <= 0 {
		return 1
	}

	elapsed := now.Sub(i.windowStart)
	if elapsed <= 0 {
		return 0
	}

	progress := float64(elapsed) / float64(i.window)
	if progress > 1 {
		return 1
	}
	return progress
}
