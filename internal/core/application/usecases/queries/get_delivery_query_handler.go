package queries

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

// GetDeliveryQueryHandler retrieves a delivery snapshot from the database.
//
// Example:
//
//	handler := NewGetDeliveryQueryHandler(db)
//	query, _ := NewGetDeliveryQuery(deliveryID)
//
//	snapshot, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Delivery %s is %s\n", snapshot.ID, snapshot.Status)
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryQueryHandler creates a handler for delivery snapshot queries.
// Requires a GORM database connection for query execution.
func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

// Handle executes the snapshot query.
// Returns errs.ObjectNotFoundError if the delivery does not exist.
func (h GetDeliveryQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryQuery,
) (GetDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			customer_id,
			status,
			driver_id,
			driver_lat,
			driver_lng,
			history,
			updated_at
		FROM deliveries
		WHERE id = ?
	`, query.DeliveryID().Bytes()).Row()

	var (
		resp       GetDeliveryQueryResponse
		id         uuid.UUID
		orderID    uuid.UUID
		customerID uuid.UUID
		status     int
		driverID   uuid.NullUUID
		driverLat  sql.NullFloat64
		driverLng  sql.NullFloat64
		historyRaw []byte
	)

	err := row.Scan(
		&id, &orderID, &customerID, &status,
		&driverID, &driverLat, &driverLng,
		&historyRaw, &resp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("delivery", query.DeliveryID().String())
	}
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if resp.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	resp.Status = delivery.Status(status).String()

	if driverID.Valid {
		converted, idErr := kernel.UUIDFromBytes(driverID.UUID[:])
		if idErr != nil {
			return GetDeliveryQueryResponse{}, idErr
		}
		resp.DriverID = &converted
	}

	if driverLat.Valid && driverLng.Valid {
		position, locErr := kernel.NewLocation(driverLat.Float64, driverLng.Float64)
		if locErr != nil {
			return GetDeliveryQueryResponse{}, locErr
		}
		resp.Position = &position
	}

	if len(historyRaw) > 0 {
		if err = json.Unmarshal(historyRaw, &resp.History); err != nil {
			return GetDeliveryQueryResponse{}, err
		}
	}

	return resp, nil
}
