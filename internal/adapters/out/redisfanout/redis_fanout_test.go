package redisfanout_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/adapters/out/redisfanout"
	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
)

func newFanout(t *testing.T) *redisfanout.Fanout {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisfanout.New(client,
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func Test_Fanout_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	f := newFanout(t)
	id := kernel.NewUUID()

	ch, cancel, err := f.Subscribe(ctx, id)
	require.NoError(t, err)
	defer cancel()

	loc, err := kernel.NewLocation(6.9000, 79.8500)
	require.NoError(t, err)
	require.NoError(t, f.Publish(ctx, delivery.NewPositionEvent(id, loc, 10*time.Second, time.Now())))

	select {
	case got := <-ch:
		assert.True(t, got.DeliveryID.IsEqual(id))
		require.NotNil(t, got.Position)
		assert.InDelta(t, 6.9000, got.Position.Latitude(), 1e-9)
		assert.InDelta(t, 79.8500, got.Position.Longitude(), 1e-9)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func Test_Fanout_PhaseEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFanout(t)
	id := kernel.NewUUID()

	ch, cancel, err := f.Subscribe(ctx, id)
	require.NoError(t, err)
	defer cancel()

	loc, err := kernel.NewLocation(6.9000, 79.8500)
	require.NoError(t, err)
	require.NoError(t, f.Publish(ctx,
		delivery.NewPhaseEvent(id, delivery.AtRestaurant, &loc, 10*time.Second, time.Now())))

	select {
	case got := <-ch:
		require.NotNil(t, got.Phase)
		assert.Equal(t, delivery.AtRestaurant, *got.Phase)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func Test_Fanout_CancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFanout(t)

	ch, cancel, err := f.Subscribe(ctx, kernel.NewUUID())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		cancel()
		cancel()
	})

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
