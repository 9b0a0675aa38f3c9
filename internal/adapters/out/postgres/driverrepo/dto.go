// Package driverrepo provides data transfer objects and mapping functions
// for driver persistence.
package driverrepo

import (
	"github.com/google/uuid"

	"tracking/internal/core/domain/model/driver"
	"tracking/internal/core/domain/model/kernel"
)

// DriverDTO represents the database structure for persisting driver aggregates.
type DriverDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string
	ContactNumber string
	Available     bool    `gorm:"index"`
	Lat           float64 `gorm:"type:double precision"`
	Lng           float64 `gorm:"type:double precision"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver domain aggregate to its database representation.
func fromDomain(aggregate *driver.Driver) DriverDTO {
	return DriverDTO{
		ID:            aggregate.ID().Bytes(),
		Name:          aggregate.Name(),
		ContactNumber: aggregate.ContactNumber(),
		Available:     aggregate.IsAvailable(),
		Lat:           aggregate.Location().Latitude(),
		Lng:           aggregate.Location().Longitude(),
	}
}

// toDomain converts a database DTO to a driver domain aggregate.
func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewLocation(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return driver.RestoreDriver(id, dto.Name, dto.ContactNumber, dto.Available, location)
}
