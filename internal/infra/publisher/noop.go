package publisher

import (
	"context"

	"shopalert/internal/domain/entity"
)

// NoopPublisher is a no-operation implementation of the Publisher interface.
// It is used when outbound delivery is disabled to avoid null checks in the code.
// This follows the Null Object pattern.
type NoopPublisher struct{}

// NewNoopPublisher creates a new NoopPublisher instance.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Name identifies the publisher as a no-op.
func (n *NoopPublisher) Name() string {
	return "noop"
}

// IsOpen always reports false: there is no circuit to trip.
func (n *NoopPublisher) IsOpen() bool {
	return false
}

// Publish does nothing and returns nil immediately.
// This allows delivery to be disabled without changing the code flow.
func (n *NoopPublisher) Publish(ctx context.Context, message string, creds *entity.TelegramCredentials) error {
	// No-op: intentionally does nothing
	return nil
}
