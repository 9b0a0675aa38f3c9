package jobs

import (
	"context"
	"log/slog"
	"time"

	"tracking/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultStaleAfter is 2.5 times the default emission cadence. A moving
// delivery whose last write is older than this has a stuck or dead emitter
// loop.
const DefaultStaleAfter = 25 * time.Second

// StaleDeliveryJob sweeps active deliveries and reports the ones whose
// position has not been written for longer than the staleness budget.
// Observers detect staleness locally from event silence; this job is the
// operator-side counterpart working off the registry.
type StaleDeliveryJob struct {
	uowFactory commands.DeliveryUoWFactory
	staleAfter time.Duration
	clock      func() time.Time
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewStaleDeliveryJob creates a watchdog sweeping the registry every ten
// seconds. A non-positive staleAfter falls back to DefaultStaleAfter.
func NewStaleDeliveryJob(
	uowFactory commands.DeliveryUoWFactory,
	staleAfter time.Duration,
	logger *slog.Logger,
) *StaleDeliveryJob {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &StaleDeliveryJob{
		uowFactory: uowFactory,
		staleAfter: staleAfter,
		clock:      time.Now,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "stale_delivery_job"),
	}
}

// Start begins the watchdog sweep, running every ten seconds.
func (j *StaleDeliveryJob) Start() error {
	_, err := j.cron.AddFunc("*/10 * * * * *", func() {
		ctx := context.Background()
		if sweepErr := j.sweep(ctx); sweepErr != nil {
			j.logger.ErrorContext(ctx, "Stale delivery sweep failed", "error", sweepErr)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale delivery watchdog started (running every 10s)")
	return nil
}

// Stop stops the watchdog.
func (j *StaleDeliveryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale delivery watchdog stopped")
}

// sweep reads all active deliveries and logs the stale moving ones. Phases
// without an emitter loop (Pending, AtRestaurant) are expected to be silent
// and are skipped.
func (j *StaleDeliveryJob) sweep(ctx context.Context) error {
	uow := j.uowFactory.Create()

	active, err := uow.DeliveryRepository().GetAllActive(ctx)
	if err != nil {
		return err
	}

	now := j.clock()
	for _, aggregate := range active {
		if !aggregate.Status().IsMoving() {
			continue
		}

		silence := now.Sub(aggregate.UpdatedAt())
		if silence > j.staleAfter {
			j.logger.WarnContext(ctx, "Delivery position is stale",
				"delivery_id", aggregate.ID().String(),
				"status", aggregate.Status().String(),
				"silence", silence.String(),
			)
		}
	}

	return nil
}
