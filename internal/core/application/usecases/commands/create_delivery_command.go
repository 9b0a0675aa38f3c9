package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// CreateDeliveryCommand represents a request to register a new delivery for
// tracking. Encapsulates the order, the receiving customer and the two
// endpoints of the trip: restaurant and drop-off point.
//
// Example:
//
//	cmd, err := NewCreateDeliveryCommand(deliveryID, orderID, customerID, restaurant, dropOff)
//	if err != nil {
//	    return fmt.Errorf("invalid delivery data: %w", err)
//	}
//
//	handler := NewCreateDeliveryCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create delivery: %w", err)
//	}
type CreateDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID         kernel.UUID
	orderID            kernel.UUID
	customerID         kernel.UUID
	restaurantLocation kernel.Location
	deliveryLocation   kernel.Location

	guard guard.ConstructorGuard
}

// NewCreateDeliveryCommand creates a command to register a new delivery.
// Validates identifiers and both locations. Returns an aggregated error if
// any validation fails.
func NewCreateDeliveryCommand(
	deliveryID kernel.UUID,
	orderID kernel.UUID,
	customerID kernel.UUID,
	restaurantLocation kernel.Location,
	deliveryLocation kernel.Location,
) (CreateDeliveryCommand, error) {
	cmd := CreateDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setRestaurantLocation(restaurantLocation),
		cmd.setDeliveryLocation(deliveryLocation),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the unique identifier for the delivery.
func (c CreateDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// OrderID returns the identifier of the order being delivered.
func (c CreateDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the identifier of the receiving customer.
func (c CreateDeliveryCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// RestaurantLocation returns the pickup point.
func (c CreateDeliveryCommand) RestaurantLocation() kernel.Location {
	return c.restaurantLocation
}

// DeliveryLocation returns the drop-off point.
func (c CreateDeliveryCommand) DeliveryLocation() kernel.Location {
	return c.deliveryLocation
}

func (c *CreateDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}

func (c *CreateDeliveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateDeliveryCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	c.customerID = customerID
	return nil
}

func (c *CreateDeliveryCommand) setRestaurantLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.restaurantLocation = location
	return nil
}

func (c *CreateDeliveryCommand) setDeliveryLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.deliveryLocation = location
	return nil
}
