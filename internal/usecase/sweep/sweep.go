// Package sweep reconciles alert records left in PENDING by a dispatch that
// never completed, typically because the process crashed between recording
// the alert and writing its terminal status. Such records are marked ERROR
// with the same detail the in-process reconciliation path writes, so
// operators see one consistent signal and can resend.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shopalert/internal/domain/entity"
	"shopalert/internal/repository"
	"shopalert/internal/resilience/retry"
	"shopalert/internal/usecase/dispatch"
)

// Result summarizes a single sweep run.
type Result struct {
	// Scanned is the number of stuck records returned by the query.
	Scanned int

	// Marked is the number of records successfully marked as interrupted.
	Marked int

	// Skipped is the number of records a concurrent dispatch finalized
	// between the scan and the status write. Their terminal status stands.
	Skipped int

	// Failed is the number of records whose status update failed even
	// after retries. They stay PENDING and will be picked up again on the
	// next run.
	Failed int
}

// Sweeper scans the alert log for records stuck in PENDING and marks them
// as interrupted. Database calls are retried with the shared backoff policy
// so a momentary connection blip does not fail the whole run.
type Sweeper struct {
	alerts   repository.AlertRepository
	cutoff   time.Duration
	batch    int
	retryCfg retry.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper. cutoff is how old a PENDING record must be
// before it is treated as interrupted; batchSize caps the records processed
// per run.
func NewSweeper(alerts repository.AlertRepository, cutoff time.Duration, batchSize int, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		alerts:   alerts,
		cutoff:   cutoff,
		batch:    batchSize,
		retryCfg: retry.DBConfig(),
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes a single sweep. It returns an error when the stuck-record
// query fails or when any status update could not be applied; partial
// progress is reported in the Result either way.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	var result Result
	cutoff := s.now().Add(-s.cutoff)

	var stuck []*entity.AlertRecord
	err := retry.WithBackoff(ctx, s.retryCfg, func() error {
		var listErr error
		stuck, listErr = s.alerts.ListStuckPending(ctx, cutoff, s.batch)
		return listErr
	})
	if err != nil {
		return result, fmt.Errorf("list stuck pending: %w", err)
	}

	result.Scanned = len(stuck)
	if len(stuck) == 0 {
		return result, nil
	}

	for _, record := range stuck {
		var marked bool
		err := retry.WithBackoff(ctx, s.retryCfg, func() error {
			var markErr error
			marked, markErr = s.alerts.MarkInterrupted(ctx, record.ID, dispatch.InterruptedDetail)
			return markErr
		})
		if err != nil {
			result.Failed++
			s.logger.Error("failed to mark interrupted alert",
				slog.String("alert_id", record.ID),
				slog.String("shop_id", record.ShopID),
				slog.Any("error", err))
			continue
		}

		// スキャン後にディスパッチが完了したレコードは確定済みとして残す
		if !marked {
			result.Skipped++
			s.logger.Info("alert already finalized, skipping",
				slog.String("alert_id", record.ID),
				slog.String("shop_id", record.ShopID))
			continue
		}

		result.Marked++
		s.logger.Info("marked interrupted alert",
			slog.String("alert_id", record.ID),
			slog.String("shop_id", record.ShopID),
			slog.String("event_type", string(record.EventType)),
			slog.Time("created_at", record.CreatedAt))
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("sweep: %d of %d status updates failed", result.Failed, result.Scanned)
	}
	return result, nil
}
