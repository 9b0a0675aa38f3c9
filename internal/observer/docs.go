// Package observer contains client-side smoothing for the position feed:
// linear interpolation between discrete events and staleness detection for
// quiet feeds.
package observer
