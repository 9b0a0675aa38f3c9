package queries

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

// GetActiveDeliveriesQueryHandler retrieves in-flight deliveries from the
// database, excluding confirmed and cancelled ones.
type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveDeliveriesQueryHandler creates a handler for active delivery queries.
// Requires a GORM database connection for query execution.
func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle executes the query to retrieve all non-terminal deliveries.
// Results are sorted by delivery ID for consistent output.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			status,
			driver_id,
			driver_lat,
			driver_lng
		FROM deliveries
		WHERE status NOT IN (?, ?)
		ORDER BY id
	`, delivery.Confirmed, delivery.Cancelled).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp      GetActiveDeliveriesQueryResponse
			id        uuid.UUID
			orderID   uuid.UUID
			status    int
			driverID  uuid.NullUUID
			driverLat sql.NullFloat64
			driverLng sql.NullFloat64
		)

		if err = rows.Scan(&id, &orderID, &status, &driverID, &driverLat, &driverLng); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		resp.Status = delivery.Status(status).String()

		if driverID.Valid {
			converted, idErr := kernel.UUIDFromBytes(driverID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			resp.DriverID = &converted
		}

		if driverLat.Valid && driverLng.Valid {
			position, locErr := kernel.NewLocation(driverLat.Float64, driverLng.Float64)
			if locErr != nil {
				return nil, locErr
			}
			resp.Position = &position
		}

		deliveries = append(deliveries, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
