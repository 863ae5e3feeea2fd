package repository

import (
	"context"

	"shopalert/internal/domain/entity"
)

// ConfigRepository reads and writes the two per-shop settings records.
// The dispatch path only ever reads; the upserts serve the configuration
// surface and follow upsert-by-shop-id semantics (last writer wins).
type ConfigRepository interface {
	// GetAlertConfig returns the shop's enabled-flags record, or nil if the
	// shop has never saved a configuration.
	GetAlertConfig(ctx context.Context, shopID string) (*entity.ShopAlertConfig, error)

	// GetReceiverConfig returns the shop's channel record, or nil if absent.
	// Legacy field normalization happens here: call sites receive one
	// canonical shape and never guess fallback precedence.
	GetReceiverConfig(ctx context.Context, shopID string) (*entity.ReceiverChannelConfig, error)

	// UpsertAlertConfig creates or replaces the shop's enabled-flags record.
	UpsertAlertConfig(ctx context.Context, config *entity.ShopAlertConfig) error

	// UpsertReceiverConfig creates or replaces the shop's channel record.
	UpsertReceiverConfig(ctx context.Context, config *entity.ReceiverChannelConfig) error
}
