package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Input length limits to prevent resource exhaustion
const (
	MaxSegmentLength = 128
	MaxJSONPayload   = 1048576 // 1MB for JSON payloads
)

// ValidateJSONPayload validates JSON payload size
func ValidateJSONPayload(payload []byte) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return fmt.Errorf("JSON payload cannot be empty")
	}

	// Use byte length for JSON payloads as they're transmitted as UTF-8
	length := len(payload)
	if length > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, length)
	}

	return nil
}

// ValidateSegment checks a value that becomes one path segment of a route.
// Slashes, whitespace and dot segments would change which endpoint is hit.
func ValidateSegment(value, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if len(value) > MaxSegmentLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, MaxSegmentLength)
	}
	if value == "." || value == ".." {
		return fmt.Errorf("invalid %s %q", fieldName, value)
	}
	for _, r := range value {
		if r == '/' || r == '?' || r == '#' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("invalid %s %q: must not contain %q", fieldName, value, r)
		}
	}
	return nil
}

// ParsePositiveInt parses a string as a positive integer.
// Returns error if the value is not a positive integer or exceeds int32 range.
func ParsePositiveInt(s string, fieldName string) (int, error) {
	s = strings.TrimSpace(s)
	id64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if id64 <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", fieldName)
	}
	return int(id64), nil
}
