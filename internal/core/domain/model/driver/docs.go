// Package driver contains the Driver aggregate: the person who physically
// moves an order from restaurant to customer.
//
// A driver carries identity (name, contact number), an availability flag
// consumed by the assignment service, and a last known geographic position
// used to pick the nearest candidate for a pending delivery.
package driver
