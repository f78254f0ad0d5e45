package validation

import (
	"strings"
	"testing"
)

func TestValidateJSONPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   []byte
		wantError bool
		errMsg    string
	}{
		{name: "small object", payload: []byte(`{"name":"Orchard"}`)},
		{name: "exactly at limit", payload: []byte(strings.Repeat("a", MaxJSONPayload))},
		{name: "empty", payload: nil, wantError: true, errMsg: "cannot be empty"},
		{name: "whitespace only", payload: []byte("  \n"), wantError: true, errMsg: "cannot be empty"},
		{
			name:      "over limit",
			payload:   []byte(strings.Repeat("a", MaxJSONPayload+1)),
			wantError: true,
			errMsg:    "exceeds maximum size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONPayload(tt.payload)
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateJSONPayload() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{name: "serial", value: "00000146"},
		{name: "hex serial", value: "0120A1B2"},
		{name: "group keyword", value: "hourly"},
		{name: "period", value: "7d"},
		{name: "dashes", value: "station-key_1"},
		{name: "empty", value: "", wantError: true},
		{name: "slash", value: "001/../user", wantError: true},
		{name: "dot dot", value: "..", wantError: true},
		{name: "space", value: "my station", wantError: true},
		{name: "query", value: "abc?x=1", wantError: true},
		{name: "fragment", value: "abc#x", wantError: true},
		{name: "backslash", value: `a\b`, wantError: true},
		{name: "newline", value: "abc\n", wantError: true},
		{name: "too long", value: strings.Repeat("a", MaxSegmentLength+1), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegment(tt.value, "station ID")
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateSegment(%q) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
			if err != nil && !strings.Contains(err.Error(), "station ID") {
				t.Errorf("error should name the field: %v", err)
			}
		})
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int
		wantError bool
		errMsg    string
	}{
		{name: "valid", input: "10", want: 10},
		{name: "max int32", input: "2147483647", want: 2147483647},
		{name: "spaces trimmed", input: " 25 ", want: 25},
		{name: "leading zero", input: "0123", want: 123},
		{name: "zero", input: "0", wantError: true, errMsg: "must be a positive integer"},
		{name: "negative", input: "-1", wantError: true, errMsg: "must be a positive integer"},
		{name: "exceeds int32", input: "2147483648", wantError: true, errMsg: "invalid amount"},
		{name: "not a number", input: "ten", wantError: true, errMsg: "invalid amount"},
		{name: "empty", input: "", wantError: true, errMsg: "invalid amount"},
		{name: "float", input: "1.5", wantError: true, errMsg: "invalid amount"},
		{name: "hex", input: "0x10", wantError: true, errMsg: "invalid amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePositiveInt(tt.input, "amount")
			if (err != nil) != tt.wantError {
				t.Fatalf("ParsePositiveInt() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("ParsePositiveInt() = %d, want %d", got, tt.want)
			}
			if tt.wantError && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}
