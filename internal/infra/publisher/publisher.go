// Package publisher provides abstraction for delivering alert messages to
// merchant-configured channels. It defines the Publisher interface which allows
// different delivery mechanisms (Telegram, future channels) to be used
// interchangeably through dependency injection.
//
// The package includes an implementation for the Telegram Bot API and a no-op
// publisher for deployments where outbound delivery is disabled.
package publisher

import (
	"context"

	"shopalert/internal/domain/entity"
)

// Publisher is an interface for delivering a rendered alert message to every
// recipient configured for a shop.
type Publisher interface {
	// Name returns the channel identifier this publisher serves
	// (e.g. entity.ChannelTelegram).
	Name() string

	// Publish delivers the message to every recipient in the credentials.
	// Recipient deliveries run concurrently; the call succeeds only if every
	// delivery succeeds. When any recipient fails, Publish returns the first
	// failure, and deliveries that already completed stand (there is no recall
	// for a sent message).
	//
	// Implementations should:
	//   - Fail fast on invalid credentials before any network traffic
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to respect the channel's API limits
	//   - Return typed errors so callers can classify failures
	//   - Respect context cancellation
	//
	// Retry is the caller's responsibility, not the publisher's.
	Publish(ctx context.Context, message string, creds *entity.TelegramCredentials) error
}
