package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"tracking/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	driverAssignmentJob *DriverAssignmentJob
	staleDeliveryJob    *StaleDeliveryJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	assignDriverHandler commands.AssignDriverCommandHandler,
	deliveryUoWFactory commands.DeliveryUoWFactory,
	staleAfter time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		driverAssignmentJob: NewDriverAssignmentJob(assignDriverHandler, logger),
		staleDeliveryJob:    NewStaleDeliveryJob(deliveryUoWFactory, staleAfter, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.driverAssignmentJob.Start(); err != nil {
		return fmt.Errorf("failed to start driver assignment job: %w", err)
	}

	if err := jm.staleDeliveryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.driverAssignmentJob.Stop()
		return fmt.Errorf("failed to start stale delivery watchdog: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleDeliveryJob.Stop()
	jm.driverAssignmentJob.Stop()
}
