// Package repository defines the persistence interfaces consumed by the use
// case layer. Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"
	"time"

	"shopalert/internal/domain/entity"
)

// AlertRepository persists the durable alert log. Status writes are owned
// exclusively by the dispatch orchestrator; UpdateStatus is last-write-wins
// so concurrent resends of the same id cannot corrupt state.
type AlertRepository interface {
	// Create inserts a new record. The record's ID and CreatedAt must be set
	// by the caller; Status is expected to be PENDING.
	Create(ctx context.Context, record *entity.AlertRecord) error

	// UpdateStatus sets the status and error detail for an existing record.
	// Idempotent in effect: repeating the same transition leaves the row
	// unchanged. Returns entity.ErrNotFound for unknown ids.
	UpdateStatus(ctx context.Context, id string, status entity.AlertStatus, errorDetail string) error

	// Get returns the record with the given id, or nil if it does not exist.
	Get(ctx context.Context, id string) (*entity.AlertRecord, error)

	// ListByShop returns the shop's records ordered newest-first.
	ListByShop(ctx context.Context, shopID string, offset, limit int) ([]*entity.AlertRecord, error)

	// CountByShop returns the total record count for the shop, independent
	// of any page window.
	CountByShop(ctx context.Context, shopID string) (int64, error)

	// ListStuckPending returns records still PENDING with a creation time
	// before the cutoff. Used by the sweep worker to reconcile records left
	// behind by an interrupted dispatch.
	ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.AlertRecord, error)

	// MarkInterrupted sets the record to ERROR with the given detail only
	// while it is still PENDING. It reports false when the record was
	// already finalized by a dispatch that completed after the scan, so a
	// delivered alert is never overwritten.
	MarkInterrupted(ctx context.Context, id string, errorDetail string) (bool, error)
}
