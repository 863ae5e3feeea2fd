package publisher

import (
	"errors"
	"fmt"
	"time"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// Credential validation errors returned before any network traffic.
var (
	// ErrNoRecipients is returned when the credentials carry no chat IDs.
	ErrNoRecipients = errors.New("publisher: no recipient chat ids configured")

	// ErrMissingToken is returned when the credentials carry no bot token.
	ErrMissingToken = errors.New("publisher: bot token is missing")
)

// Typed delivery errors used to classify non-2xx responses from the channel API.

// RateLimitError represents a 429 rate limit response from the channel API.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from the channel API.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from the channel API.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// maskChatID hides all but the first 3 characters of a chat ID so recipient
// identifiers never appear in full in log output.
func maskChatID(chatID string) string {
	if len(chatID) <= 3 {
		return chatID + "***"
	}
	return chatID[:3] + "***"
}
