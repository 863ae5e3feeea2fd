package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Alert IDs are UUIDs, so the segment matcher accepts hex digits and dashes.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Alert routes with IDs
	{Pattern: regexp.MustCompile(`^/alerts/[0-9a-fA-F-]{8,}/resend$`), Template: "/alerts/:id/resend"},
	{Pattern: regexp.MustCompile(`^/alerts/[0-9a-fA-F-]{8,}$`), Template: "/alerts/:id"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /alerts/0fdc9f1e-...) to template format
// (e.g., /alerts/:id). Static paths remain unchanged.
//
// Performance: <1μs per operation (pre-compiled regex patterns)
//
// Examples:
//
//	NormalizePath("/alerts/0fdc9f1e-3c2a-4f5b-9a8e-1b2c3d4e5f60")        // "/alerts/:id"
//	NormalizePath("/alerts/0fdc9f1e-3c2a-4f5b-9a8e-1b2c3d4e5f60/resend") // "/alerts/:id/resend"
//	NormalizePath("/alerts")                                              // "/alerts" (unchanged)
//	NormalizePath("/health")                                              // "/health" (unchanged)
//	NormalizePath("/metrics")                                             // "/metrics" (unchanged)
//	NormalizePath("/auth/token")                                          // "/auth/token" (unchanged)
//	NormalizePath("/unknown/path/123")                                    // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/alerts/0fdc9f1e-3c2a-4f5b-9a8e-1b2c3d4e5f60?page=1") // "/alerts/:id"
//	NormalizePath("/alerts/0fdc9f1e-3c2a-4f5b-9a8e-1b2c3d4e5f60/")       // "/alerts/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path
	// This is safe - static paths like /health, /metrics, /auth/token
	// and collection endpoints like /alerts and /webhooks pass through unchanged
	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization. This is useful for capacity planning and monitoring.
func GetExpectedCardinality() int {
	// Count template patterns
	templateCount := len(pathPatterns)

	// Estimate static endpoints
	staticCount := 8 // /alerts, /webhooks, /health, /ready, /live, /metrics, /auth/token, etc.

	// Total expected cardinality
	return templateCount + staticCount
}
