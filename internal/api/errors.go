package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is returned for every response with status >= 300.
//
// Body is the parsed JSON document, including a literal null. It is nil when
// the server sent nothing or sent non-JSON text; Raw keeps the bytes either way.
type APIError struct {
	StatusCode int
	Method     string
	Route      string
	Body       json.RawMessage
	Raw        []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message())
}

// Code classifies the error by status.
func (e *APIError) Code() ErrorCode {
	return ErrorCodeFromStatus(e.StatusCode)
}

// Message extracts a human-readable message from the response.
func (e *APIError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(e.Body) > 0 && json.Unmarshal(e.Body, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(e.Raw)); text != "" && len(e.Body) == 0 {
		return text
	}
	if fields := e.FieldErrors(); len(fields) > 0 {
		return "validation failed:\n" + formatFieldErrors(fields)
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

// FieldErrors returns per-field validation messages from an "errors" object.
// Values may be a single string or a list of strings.
func (e *APIError) FieldErrors() map[string][]string {
	if len(e.Body) == 0 {
		return nil
	}
	var body struct {
		Errors map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil || len(body.Errors) == 0 {
		return nil
	}
	fields := make(map[string][]string, len(body.Errors))
	for field, value := range body.Errors {
		switch v := value.(type) {
		case string:
			fields[field] = append(fields[field], v)
		case []any:
			for _, msg := range v {
				if s, ok := msg.(string); ok {
					fields[field] = append(fields[field], s)
				}
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func formatFieldErrors(fields map[string][]string) string {
	var lines []string
	for field, msgs := range fields {
		for _, msg := range msgs {
			lines = append(lines, fmt.Sprintf("  %s: %s", field, msg))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// AuthError reports a failure to obtain or renew credentials. StatusCode is
// zero when no token request was sent.
type AuthError struct {
	StatusCode int
	Reason     string
	Body       json.RawMessage
	Raw        []byte
	Err        error
}

func (e *AuthError) Error() string {
	msg := "authentication error: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func statusOf(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// IsAuthError checks if the error came from token acquisition.
func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

// IsValidationError checks if the API rejected the request input (400 or 422).
func IsValidationError(err error) bool {
	status, ok := statusOf(err)
	return ok && (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity)
}

// IsUnauthorized checks for a 401 response.
func IsUnauthorized(err error) bool {
	status, ok := statusOf(err)
	return ok && status == http.StatusUnauthorized
}

// IsForbidden checks for a 403 response.
func IsForbidden(err error) bool {
	status, ok := statusOf(err)
	return ok && status == http.StatusForbidden
}

// IsNotFoundError checks for a 404 response.
func IsNotFoundError(err error) bool {
	status, ok := statusOf(err)
	return ok && status == http.StatusNotFound
}

// IsConflict checks for a 409 response.
func IsConflict(err error) bool {
	status, ok := statusOf(err)
	return ok && status == http.StatusConflict
}

// IsServerError checks for a 5xx response.
func IsServerError(err error) bool {
	status, ok := statusOf(err)
	return ok && status >= 500 && status < 600
}
