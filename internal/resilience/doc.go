// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic to keep alert
// dispatching stable when the Telegram API or the database misbehaves.
//
// The package supports:
//   - Circuit breakers for outbound Telegram Bot API calls
//   - Retry logic with exponential backoff and jitter for transient database errors
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.TelegramAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callTelegramAPI()
//	})
//
//	retryConfig := retry.DBConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience
