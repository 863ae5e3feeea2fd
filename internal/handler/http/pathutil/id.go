package pathutil

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ExtractUUID extracts and validates a UUID segment from a URL path.
// It removes the specified prefix and checks that the remaining string
// is a well-formed UUID.
//
// Parameters:
//   - path: The full URL path (e.g., "/alerts/0fdc9f1e-3c2a-4f5b-9a8e-1b2c3d4e5f60")
//   - prefix: The prefix to remove (e.g., "/alerts/")
//
// Returns:
//   - string: The canonical lowercase UUID
//   - error: ErrInvalidID if the segment is not a valid UUID
func ExtractUUID(path, prefix string) (string, error) {
	idStr := strings.TrimPrefix(path, prefix)
	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}
