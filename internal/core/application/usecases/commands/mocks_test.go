package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/driver"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"
)

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetAllActive(ctx context.Context) ([]*delivery.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetAllPending(ctx context.Context) ([]*delivery.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) CompareAndSetStatus(
	ctx context.Context, id kernel.UUID, expected, next delivery.Status, now time.Time,
) error {
	args := m.Called(ctx, id, expected, next, now)
	return args.Error(0)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetAllAvailable(ctx context.Context) ([]*driver.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

// MockUoW implements commands.UoW with no-op transaction control.
type MockUoW struct {
	deliveries *MockDeliveryRepository
	drivers    *MockDriverRepository
	committed  bool
}

func (u *MockUoW) Begin(context.Context) error    { return nil }
func (u *MockUoW) Commit(context.Context) error   { u.committed = true; return nil }
func (u *MockUoW) Rollback(context.Context) error { return nil }

func (u *MockUoW) DeliveryRepository() ports.DeliveryRepository { return u.deliveries }
func (u *MockUoW) DriverRepository() ports.DriverRepository     { return u.drivers }

type MockUoWFactory struct{ uow *MockUoW }

func (f MockUoWFactory) Create() commands.UoW { return f.uow }

// MockDeliveryUoWFactory serves handlers that only touch deliveries.
type MockDeliveryUoWFactory struct{ uow *MockUoW }

func (f MockDeliveryUoWFactory) Create() commands.DeliveryUoW { return f.uow }

type MockEmitter struct{ mock.Mock }

func (m *MockEmitter) StartTracking(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmitter) ResumeAfterRestaurant(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmitter) StopTracking(id kernel.UUID) {
	m.Called(id)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, event delivery.PositionUpdateEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func mustLocation(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return loc
}

func pendingDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		mustLocation(t, 6.9000, 79.8500),
		mustLocation(t, 6.9100, 79.8600),
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return d
}

func availableDriver(t *testing.T, lat, lng float64) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), "Kasun Perera", "+94771234567", mustLocation(t, lat, lng))
	require.NoError(t, err)
	return d
}
