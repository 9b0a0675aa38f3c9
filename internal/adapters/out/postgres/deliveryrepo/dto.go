// Package deliveryrepo provides data transfer objects and mapping functions
// for delivery persistence. This package implements the repository pattern
// for the delivery aggregate, handling the conversion between domain entities
// and database representations including the serialized status history.
package deliveryrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

// DeliveryDTO represents the database structure for persisting delivery
// aggregates. The status history is stored as a jsonb document: it is
// append-only and always read back whole, so relational decomposition would
// buy nothing.
type DeliveryDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID  `gorm:"type:uuid;index"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index"`
	RestaurantLat float64    `gorm:"type:double precision"`
	RestaurantLng float64    `gorm:"type:double precision"`
	DeliveryLat   float64    `gorm:"type:double precision"`
	DeliveryLng   float64    `gorm:"type:double precision"`
	DriverID      *uuid.UUID `gorm:"type:uuid;index"`
	DriverLat     *float64   `gorm:"type:double precision"`
	DriverLng     *float64   `gorm:"type:double precision"`
	Status        int        `gorm:"index"`
	History       []byte     `gorm:"type:jsonb"`
	UpdatedAt     time.Time
}

// TableName specifies the database table name for delivery entities.
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// historyRecordDTO is one serialized status history entry. The status is
// stored as its wire string so the column is readable without the enum table.
type historyRecordDTO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// fromDomain converts a delivery domain aggregate to its database representation.
func fromDomain(aggregate *delivery.Delivery) (DeliveryDTO, error) {
	var driverID *uuid.UUID
	if id := aggregate.Driver(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	var driverLat, driverLng *float64
	if position := aggregate.Position(); position != nil {
		lat, lng := position.Latitude(), position.Longitude()
		driverLat, driverLng = &lat, &lng
	}

	history, err := marshalHistory(aggregate.History())
	if err != nil {
		return DeliveryDTO{}, err
	}

	return DeliveryDTO{
		ID:            aggregate.ID().Bytes(),
		OrderID:       aggregate.OrderID().Bytes(),
		CustomerID:    aggregate.CustomerID().Bytes(),
		RestaurantLat: aggregate.RestaurantLocation().Latitude(),
		RestaurantLng: aggregate.RestaurantLocation().Longitude(),
		DeliveryLat:   aggregate.DeliveryLocation().Latitude(),
		DeliveryLng:   aggregate.DeliveryLocation().Longitude(),
		DriverID:      driverID,
		DriverLat:     driverLat,
		DriverLng:     driverLng,
		Status:        int(aggregate.Status()),
		History:       history,
		UpdatedAt:     aggregate.UpdatedAt(),
	}, nil
}

// toDomain converts a database DTO to a delivery domain aggregate using
// RestoreDelivery, which re-checks the history invariant on the way in.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	restaurant, err := kernel.NewLocation(dto.RestaurantLat, dto.RestaurantLng)
	if err != nil {
		return nil, err
	}

	dropOff, err := kernel.NewLocation(dto.DeliveryLat, dto.DeliveryLng)
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		converted, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &converted
	}

	var position *kernel.Location
	if dto.DriverLat != nil && dto.DriverLng != nil {
		loc, locErr := kernel.NewLocation(*dto.DriverLat, *dto.DriverLng)
		if locErr != nil {
			return nil, locErr
		}
		position = &loc
	}

	history, err := unmarshalHistory(dto.History)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(
		id, orderID, customerID, restaurant, dropOff,
		driverID, position,
		delivery.Status(dto.Status), history, dto.UpdatedAt,
	)
}

func marshalHistory(records []delivery.StatusRecord) ([]byte, error) {
	out := make([]historyRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, historyRecordDTO{
			Status:    r.Status.String(),
			Timestamp: r.Timestamp,
		})
	}
	return json.Marshal(out)
}

func unmarshalHistory(raw []byte) ([]delivery.StatusRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var dtos []historyRecordDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, err
	}

	out := make([]delivery.StatusRecord, 0, len(dtos))
	for _, dto := range dtos {
		status, err := delivery.StatusFromString(dto.Status)
		if err != nil {
			return nil, err
		}
		out = append(out, delivery.StatusRecord{Status: status, Timestamp: dto.Timestamp})
	}
	return out, nil
}
