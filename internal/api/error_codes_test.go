package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestErrorCodeFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{400, ErrBadRequest},
		{401, ErrUnauthorized},
		{403, ErrForbidden},
		{404, ErrNotFound},
		{409, ErrConflict},
		{422, ErrValidation},
		{500, ErrServerError},
		{504, ErrServerError},
		{302, ErrUnknown},
		{418, ErrUnknown},
	}
	for _, tt := range tests {
		if got := ErrorCodeFromStatus(tt.status); got != tt.want {
			t.Errorf("ErrorCodeFromStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestErrorCodeIsRetryable(t *testing.T) {
	retryable := map[ErrorCode]bool{
		ErrServerError:  true,
		ErrTimeout:      true,
		ErrNotFound:     false,
		ErrUnauthorized: false,
		ErrAuthFailed:   false,
		ErrValidation:   false,
	}
	for code, want := range retryable {
		if got := code.IsRetryable(); got != want {
			t.Errorf("%s.IsRetryable() = %v, want %v", code, got, want)
		}
	}
}

func TestErrorCodeSuggestion(t *testing.T) {
	if !strings.Contains(ErrUnauthorized.Suggestion(), "fieldclimate auth login") {
		t.Errorf("unexpected suggestion %q", ErrUnauthorized.Suggestion())
	}
	if ErrUnknown.Suggestion() != "" {
		t.Error("unknown errors should have no suggestion")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("output", "xml", []string{"text", "json"})
	if err.Code != ErrValidation {
		t.Errorf("Code = %s", err.Code)
	}
	if err.Message != `invalid output "xml": must be one of text, json` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != `[validation_failed] invalid output "xml": must be one of text, json` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestStructuredErrorMarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewStructuredError(ErrNotFound, "missing"))
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if decoded["code"] != "not_found" || decoded["message"] != "missing" || decoded["retryable"] != false {
		t.Errorf("unexpected JSON %s", data)
	}
	if _, ok := decoded["context"]; ok {
		t.Error("empty context should be omitted")
	}
}
