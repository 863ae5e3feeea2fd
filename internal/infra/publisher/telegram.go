package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopalert/internal/domain/entity"
	"shopalert/internal/resilience/circuitbreaker"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TelegramConfig contains configuration for Telegram Bot API delivery.
type TelegramConfig struct {
	// BaseURL is the Telegram API base URL. Defaults to the public endpoint;
	// overridable for tests.
	BaseURL string

	// Timeout is the HTTP request timeout for Telegram API calls
	Timeout time.Duration
}

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	defaultTimeout         = 10 * time.Second

	// envelopeMarker prefixes every message rendered by the template engine.
	// Text already carrying it passes through unmodified to avoid double-wrapping.
	envelopeMarker = "\U0001F514" // 🔔
)

// TelegramPublisher delivers alert messages to Telegram chats via the Bot API.
type TelegramPublisher struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
}

// NewTelegramPublisher creates a new TelegramPublisher with the specified configuration.
//
// The publisher is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 25 requests/second with burst of 5
//     (Telegram Bot API global limit: ~30 messages per second)
//   - Circuit breaker around the Telegram API endpoint
func NewTelegramPublisher(config TelegramConfig) *TelegramPublisher {
	if config.BaseURL == "" {
		config.BaseURL = defaultTelegramBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &TelegramPublisher{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(25, 5),
		breaker:     circuitbreaker.New(circuitbreaker.TelegramAPIConfig()),
	}
}

// Name returns the channel identifier for Telegram delivery.
func (t *TelegramPublisher) Name() string {
	return entity.ChannelTelegram
}

// IsOpen reports whether the delivery circuit breaker is open.
func (t *TelegramPublisher) IsOpen() bool {
	return t.breaker.IsOpen()
}

// sendMessagePayload represents the JSON payload sent to the sendMessage endpoint.
type sendMessagePayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// telegramErrorResponse represents the error response from the Telegram API.
type telegramErrorResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"` // In seconds
	} `json:"parameters"`
}

// wrapEnvelope wraps bare text in the default alert envelope. Messages already
// rendered by the template engine start with the envelope marker and pass
// through unmodified.
func wrapEnvelope(message string) string {
	if strings.HasPrefix(message, envelopeMarker) {
		return message
	}
	return fmt.Sprintf("%s <b>Alert Notification</b>\n\n%s", envelopeMarker, message)
}

// Publish delivers the message to every configured chat.
// This method implements the Publisher interface.
//
// It performs the following steps:
//  1. Validate credentials (fail fast before any network traffic)
//  2. Generate unique request_id for tracing
//  3. Wrap bare text in the default envelope
//  4. Launch one sendMessage request per chat concurrently
//
// The call fails if any recipient delivery fails; deliveries that already
// completed are not recalled. There is no internal retry.
func (t *TelegramPublisher) Publish(ctx context.Context, message string, creds *entity.TelegramCredentials) error {
	if creds == nil || creds.BotToken == "" {
		return ErrMissingToken
	}
	if len(creds.ChatIDs) == 0 {
		return ErrNoRecipients
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	text := wrapEnvelope(message)

	slog.Info("Starting Telegram publish",
		slog.String("request_id", requestID),
		slog.Int("chat_count", len(creds.ChatIDs)),
		slog.Int("message_length", len(text)))

	g, gctx := errgroup.WithContext(ctx)
	for _, chatID := range creds.ChatIDs {
		chatID := chatID
		g.Go(func() error {
			return t.sendToChat(gctx, text, chatID, creds.BotToken)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("Telegram publish failed",
			slog.String("request_id", requestID),
			slog.Int("chat_count", len(creds.ChatIDs)),
			slog.Any("error", err))
		return fmt.Errorf("telegram publish: %w", err)
	}

	slog.Info("Telegram message delivered to all recipients",
		slog.String("request_id", requestID),
		slog.Int("chat_count", len(creds.ChatIDs)))
	return nil
}

// sendToChat delivers the message to a single chat. Rate limiting is applied
// before the request, and the HTTP call runs through the circuit breaker.
func (t *TelegramPublisher) sendToChat(ctx context.Context, text, chatID, botToken string) error {
	requestID, _ := ctx.Value(requestIDKey).(string)

	if err := t.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	slog.Debug("Sending to Telegram chat",
		slog.String("request_id", requestID),
		slog.String("chat_id", maskChatID(chatID)))

	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.sendRequest(ctx, text, chatID, botToken)
	})
	if err != nil {
		slog.Error("Telegram send failed",
			slog.String("request_id", requestID),
			slog.String("chat_id", maskChatID(chatID)),
			slog.Any("error", err))
		return err
	}

	slog.Debug("Telegram message delivered",
		slog.String("request_id", requestID),
		slog.String("chat_id", maskChatID(chatID)))
	return nil
}

// sendRequest sends a single sendMessage request to the Telegram API.
//
// Returns:
//   - nil: Request succeeded (2xx status)
//   - error: Request failed (non-2xx status or network error)
//
// Error types:
//   - 429: RateLimitError (contains retry_after duration)
//   - 4xx (non-429): ClientError
//   - 5xx: ServerError
func (t *TelegramPublisher) sendRequest(ctx context.Context, text, chatID, botToken string) error {
	payload := sendMessagePayload{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.config.BaseURL, botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body for error messages
	body, _ := io.ReadAll(resp.Body)

	// Success
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Rate limit error (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractRetryAfter(resp, body)
		return &RateLimitError{
			Message:    "Telegram rate limit exceeded",
			RetryAfter: retryAfter,
		}
	}

	// Client error (4xx)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Telegram API client error: %s", apiErrorDetail(resp.StatusCode, body)),
		}
	}

	// Server error (5xx)
	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Telegram API server error: %s", apiErrorDetail(resp.StatusCode, body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// apiErrorDetail extracts the description from a Telegram error response,
// falling back to the HTTP status when the body is not parseable.
func apiErrorDetail(statusCode int, body []byte) string {
	var apiErr telegramErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Description != "" {
		return apiErr.Description
	}
	return fmt.Sprintf("status %d", statusCode)
}

// extractRetryAfter extracts the retry_after duration from a 429 response.
// It tries to parse from the JSON body first, then falls back to the
// Retry-After header.
//
// Returns:
//   - time.Duration: Retry after duration (default 5s if not found)
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	// Try to parse from JSON response
	var apiErr telegramErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Parameters.RetryAfter > 0 {
		return time.Duration(apiErr.Parameters.RetryAfter) * time.Second
	}

	// Fall back to Retry-After header (in seconds)
	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	// Default retry after 5 seconds
	return 5 * time.Second
}
