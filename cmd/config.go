package cmd

import "time"

// Config carries all runtime settings, read from the environment at startup.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// TickInterval is the emitter cadence. Zero means the emitter default.
	TickInterval time.Duration

	// ProximityThresholdMeters triggers the restaurant stop. Zero means the
	// emitter default.
	ProximityThresholdMeters float64

	// MaxEmitFailures is the consecutive-failure budget before a delivery is
	// moved to Error. Zero means the emitter default.
	MaxEmitFailures int

	// StaleAfter is the watchdog silence budget. Zero means the jobs default.
	StaleAfter time.Duration

	// GoogleMapsAPIKey enables the Directions-backed route planner.
	// When empty, routes are synthesized as straight-line legs.
	GoogleMapsAPIKey string

	// RedisAddr enables the Redis pub/sub fan-out for multi-instance
	// deployments. When empty, the in-process broker is used.
	RedisAddr     string
	RedisPassword string
}
