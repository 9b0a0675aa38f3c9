// Package emitter contains the position emission engine: one goroutine per
// tracked delivery, advancing the driver along a computed route one point per
// cadence tick.
//
// Each tick persists the new position, runs the phase decision (restaurant
// proximity on the first leg, route exhaustion on the second) and publishes
// the result to watchers. Loops tolerate a bounded number of consecutive
// failures before moving the delivery to its error phase and dying.
package emitter
