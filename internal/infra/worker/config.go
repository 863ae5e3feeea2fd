package worker

import (
	"fmt"
	"log/slog"
	"time"

	"shopalert/internal/pkg/config"
)

// SweepConfig holds the configuration for the reconciliation worker.
// The worker periodically scans the alert log for records stuck in
// PENDING and marks them as interrupted so operators can resend them.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can start
// safely even with invalid or missing configuration.
type SweepConfig struct {
	// CronSchedule is the cron expression for the sweep job.
	// Format: "minute hour day month weekday"
	// Default: "*/5 * * * *" (every 5 minutes)
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "Asia/Tokyo", "UTC"
	// Default: "Asia/Tokyo"
	Timezone string

	// PendingCutoff is how old a PENDING record must be before the sweep
	// considers the dispatch interrupted. Records younger than this may
	// still be in flight and are left alone.
	// Range: 1 minute to 24 hours
	// Default: 10 minutes
	PendingCutoff time.Duration

	// BatchSize is the maximum number of stuck records processed per run.
	// Range: 1-1000
	// Default: 100
	BatchSize int

	// SweepTimeout is the maximum duration for a single sweep run.
	// Must be positive (> 0)
	// Default: 2 minutes
	SweepTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a SweepConfig with production-ready defaults:
// a 5-minute sweep interval, a 10-minute PENDING cutoff (well beyond any
// single Telegram delivery timeout), and batches of 100 records.
func DefaultConfig() SweepConfig {
	return SweepConfig{
		CronSchedule:  "*/5 * * * *",
		Timezone:      "Asia/Tokyo",
		PendingCutoff: 10 * time.Minute,
		BatchSize:     100,
		SweepTimeout:  2 * time.Minute,
		HealthPort:    9091,
	}
}

// Validate checks the configuration values using the reusable validators
// from internal/pkg/config. All field errors are collected and returned
// together.
func (c *SweepConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateDuration(c.PendingCutoff, 1*time.Minute, 24*time.Hour); err != nil {
		errors = append(errors, fmt.Errorf("pending cutoff: %w", err))
	}

	if err := config.ValidateIntRange(c.BatchSize, 1, 1000); err != nil {
		errors = append(errors, fmt.Errorf("batch size: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.SweepTimeout); err != nil {
		errors = append(errors, fmt.Errorf("sweep timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads the sweep configuration from environment
// variables with validation and automatic fallback to defaults on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use default value, log warning, increment metrics
//  5. Never return error - always return a valid configuration
//
// Environment variables:
//   - SWEEP_CRON_SCHEDULE: Cron expression (default: "*/5 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "Asia/Tokyo")
//   - PENDING_CUTOFF: Duration string, e.g., "10m" (default: 10 minutes)
//   - SWEEP_BATCH_SIZE: Integer 1-1000 (default: 100)
//   - SWEEP_TIMEOUT: Duration string, e.g., "2m" (default: 2 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *SweepMetrics) (*SweepConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("SWEEP_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("cron_schedule")
		metrics.RecordFallback("cron_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "CronSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("PENDING_CUTOFF", cfg.PendingCutoff, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 24*time.Hour)
	})
	cfg.PendingCutoff = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("pending_cutoff")
		metrics.RecordFallback("pending_cutoff", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "PendingCutoff"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("SWEEP_BATCH_SIZE", cfg.BatchSize, func(v int) error {
		return config.ValidateIntRange(v, 1, 1000)
	})
	cfg.BatchSize = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("batch_size")
		metrics.RecordFallback("batch_size", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "BatchSize"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("SWEEP_TIMEOUT", cfg.SweepTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
	})
	cfg.SweepTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("sweep_timeout")
		metrics.RecordFallback("sweep_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "SweepTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
