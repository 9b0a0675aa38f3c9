// Package jobs provides scheduled background tasks for the tracking system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the tracking service.
//
// # Available Jobs
//
// 1. DriverAssignmentJob - Runs every second to assign pending deliveries to available drivers
// 2. StaleDeliveryJob - Runs every ten seconds to report moving deliveries with stale positions
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(assignDriverHandler, deliveryUoWFactory, staleAfter, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Assignment job ignores expected business errors (no deliveries, no drivers)
// - Watchdog logs sweep failures as they indicate registry issues
// - Failed job starts will stop any already running jobs
package jobs
