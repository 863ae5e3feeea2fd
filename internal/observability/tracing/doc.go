// Package tracing provides OpenTelemetry tracing integration.
//
// It exposes the application tracer and an HTTP middleware that extracts
// W3C Trace Context from incoming requests, opens a server span per request,
// and reflects the trace id back to clients via the X-Trace-Id header.
//
// Example usage:
//
//	import "shopalert/internal/observability/tracing"
//
//	mux := http.NewServeMux()
//	handler := tracing.Middleware(mux)
//
//	func dispatchAlert(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "dispatch.send")
//	    defer span.End()
//	    // ... deliver the alert ...
//	}
package tracing
