package deliveryrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery to the database.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewRegistryWriteFailureError(aggregate.ID().String(), err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing delivery to the database, including any history
// entries appended since it was loaded.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&DeliveryDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return errs.NewRegistryWriteFailureError(aggregate.ID().String(), result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery by ID.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActive retrieves all deliveries that are neither confirmed nor cancelled.
func (r *GormDeliveryRepository) GetAllActive(ctx context.Context) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	if err := r.db.WithContext(ctx).
		Find(&dtos, "status NOT IN ?", []int{int(delivery.Confirmed), int(delivery.Cancelled)}).Error; err != nil {
		return nil, err
	}

	return r.toDomainAll(dtos)
}

// GetAllPending retrieves deliveries still waiting for a driver.
func (r *GormDeliveryRepository) GetAllPending(ctx context.Context) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "status = ?", int(delivery.Pending)).Error; err != nil {
		return nil, err
	}

	return r.toDomainAll(dtos)
}

// CompareAndSetStatus atomically moves the delivery from expected to next,
// appending a history entry stamped with now. The guarded UPDATE (id AND
// status) is the linearization point: of two racing terminal writes exactly
// one sees RowsAffected == 1.
func (r *GormDeliveryRepository) CompareAndSetStatus(
	ctx context.Context,
	id kernel.UUID,
	expected delivery.Status,
	next delivery.Status,
	now time.Time,
) error {
	if err := id.Validate(); err != nil {
		return err
	}

	aggregate, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if aggregate.Status() != expected {
		return errs.NewInvalidDeliveryStateError("compare-and-set to "+next.String(), aggregate.Status().String())
	}

	if err = applyTransition(aggregate, next, now); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&DeliveryDTO{}).
		Where("id = ? AND status = ?", dto.ID, int(expected)).
		Updates(&dto)
	if result.Error != nil {
		return errs.NewRegistryWriteFailureError(id.String(), result.Error)
	}

	if result.RowsAffected == 0 {
		// Someone else won the race between our read and this write.
		return errs.NewInvalidDeliveryStateError("compare-and-set to "+next.String(), "concurrently modified")
	}

	r.tracker.TrackAggregate(id, aggregate)
	return nil
}

func applyTransition(aggregate *delivery.Delivery, next delivery.Status, now time.Time) error {
	switch next {
	case delivery.ToRestaurant:
		return errs.NewInvalidDeliveryStateError("compare-and-set", "assignment must go through AssignDriver")
	case delivery.AtRestaurant:
		return aggregate.ArriveAtRestaurant(now)
	case delivery.ToDestination:
		return aggregate.Resume(now)
	case delivery.Arrived:
		return aggregate.Arrive(now)
	case delivery.Confirmed:
		return aggregate.Confirm(now)
	case delivery.Cancelled:
		return aggregate.Cancel(now)
	case delivery.Error:
		return aggregate.Fail(now)
	default:
		return errs.NewInvalidDeliveryStateError("compare-and-set", next.String())
	}
}

func (r *GormDeliveryRepository) toDomainAll(dtos []DeliveryDTO) ([]*delivery.Delivery, error) {
	out := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, aggregate)
	}
	return out, nil
}
