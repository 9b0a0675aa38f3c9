package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tracking/cmd"
	"tracking/internal/adapters/out/postgres/deliveryrepo"
	"tracking/internal/adapters/out/postgres/driverrepo"
	"tracking/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	configs := getConfigs(logger)

	gormDB, err := openDatabase(configs)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		logger.Error("Failed to build composition root", "error", err)
		os.Exit(1)
	}

	jobManager := jobs.NewJobManager(
		root.CreateAssignDriverCommandHandler(),
		root.DeliveryUoWFactory(),
		configs.StaleAfter,
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		logger.Error("Failed to start background jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	root.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			startErr != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", startErr)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP shutdown failed", "error", shutdownErr)
	}
	root.Emitter().Shutdown()
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err = gormDB.AutoMigrate(&deliveryrepo.DeliveryDTO{}, &driverrepo.DriverDTO{}); err != nil {
		return nil, err
	}

	return gormDB, nil
}

func getConfigs(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	return cmd.Config{
		HTTPPort:                 envOrDefault("HTTP_PORT", "8080"),
		DBHost:                   envOrDefault("DB_HOST", "localhost"),
		DBPort:                   envOrDefault("DB_PORT", "5432"),
		DBUser:                   envOrDefault("DB_USER", "postgres"),
		DBPassword:               os.Getenv("DB_PASSWORD"),
		DBName:                   envOrDefault("DB_NAME", "tracking"),
		DBSslMode:                envOrDefault("DB_SSLMODE", "disable"),
		TickInterval:             durationEnv(logger, "TICK_INTERVAL"),
		ProximityThresholdMeters: floatEnv(logger, "PROXIMITY_THRESHOLD_METERS"),
		MaxEmitFailures:          intEnv(logger, "MAX_EMIT_FAILURES"),
		StaleAfter:               durationEnv(logger, "STALE_AFTER"),
		GoogleMapsAPIKey:         os.Getenv("GOOGLE_MAPS_API_KEY"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv parses an optional duration variable ("10s", "1m"). Zero means
// the component default applies.
func durationEnv(logger *slog.Logger, key string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("Ignoring malformed duration variable", "key", key, "value", raw)
		return 0
	}
	return value
}

func floatEnv(logger *slog.Logger, key string) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("Ignoring malformed numeric variable", "key", key, "value", raw)
		return 0
	}
	return value
}

func intEnv(logger *slog.Logger, key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Ignoring malformed integer variable", "key", key, "value", raw)
		return 0
	}
	return value
}
