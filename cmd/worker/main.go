package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	hhttp "shopalert/internal/handler/http/respond"
	pgRepo "shopalert/internal/infra/adapter/persistence/postgres"
	"shopalert/internal/infra/db"
	workerPkg "shopalert/internal/infra/worker"
	"shopalert/internal/observability/logging"
	"shopalert/internal/usecase/sweep"
)

// waitForMigrations blocks until the API process has applied the schema.
// The worker only reads and updates alert rows, so probing the alert table
// is sufficient.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM alert_messages LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load sweep configuration (fail-open strategy)
	sweepMetrics := workerPkg.NewSweepMetrics()
	sweepMetrics.MustRegister()
	sweepConfig, err := workerPkg.LoadConfigFromEnv(logger, sweepMetrics)
	if err != nil {
		logger.Error("failed to load sweep configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("sweep configuration loaded",
		slog.String("cron_schedule", sweepConfig.CronSchedule),
		slog.String("timezone", sweepConfig.Timezone),
		slog.Duration("pending_cutoff", sweepConfig.PendingCutoff),
		slog.Int("batch_size", sweepConfig.BatchSize),
		slog.Duration("sweep_timeout", sweepConfig.SweepTimeout),
		slog.Int("health_port", sweepConfig.HealthPort))

	alertRepo := pgRepo.NewAlertRepo(database)
	sweeper := sweep.NewSweeper(alertRepo, sweepConfig.PendingCutoff, sweepConfig.BatchSize, logger)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", sweepConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(logger, sweeper, sweepConfig, sweepMetrics, healthServer)
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// startCronWorker starts the cron scheduler and runs the sweep job periodically.
func startCronWorker(logger *slog.Logger, sweeper *sweep.Sweeper, cfg *workerPkg.SweepConfig, metrics *workerPkg.SweepMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runSweepJob(logger, sweeper, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runSweepJob executes a single sweep run with timeout and error handling.
func runSweepJob(logger *slog.Logger, sweeper *sweep.Sweeper, cfg *workerPkg.SweepConfig, metrics *workerPkg.SweepMetrics) {
	startTime := time.Now()
	metrics.RecordSweepRun("started")
	logger.Info("sweep started")

	// スイープ処理のタイムアウト（設定から取得）
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepTimeout)
	defer cancel()

	result, err := sweeper.Run(ctx)
	if err != nil {
		// 機密情報をマスクしてログ出力
		logger.Error("sweep failed", slog.String("error", hhttp.SanitizeError(err)))
		metrics.RecordSweepRun("failure")
		metrics.RecordSweepDuration(time.Since(startTime).Seconds())
		metrics.RecordAlertsMarked(result.Marked)
		return
	}

	metrics.RecordSweepRun("success")
	metrics.RecordSweepDuration(time.Since(startTime).Seconds())
	metrics.RecordAlertsMarked(result.Marked)
	metrics.RecordLastSuccess()

	logger.Info("sweep completed",
		slog.Int("scanned", result.Scanned),
		slog.Int("marked", result.Marked),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", time.Since(startTime)),
	)
}
