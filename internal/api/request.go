package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is the envelope a Signer sees before the request goes on the wire.
// Route is relative to the API base URL and never starts with a slash.
type Request struct {
	Method  string
	Route   string
	Body    any
	Headers http.Header
}

// NewRequest builds an unsigned envelope that accepts JSON responses.
func NewRequest(method, route string, body any) *Request {
	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	return &Request{
		Method:  method,
		Route:   route,
		Body:    body,
		Headers: headers,
	}
}

// Response is a successful (status < 300) API response.
//
// Body holds the JSON document the server returned. It is nil for 204 No
// Content and for empty or non-JSON bodies; Raw always keeps the bytes as
// received.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
	Raw        []byte
}

func newResponse(statusCode int, header http.Header, raw []byte) *Response {
	return &Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       jsonBody(statusCode, raw),
		Raw:        raw,
	}
}

// jsonBody returns raw as a JSON document when it parses as one.
// A literal null is kept so callers can tell it apart from an empty body.
func jsonBody(statusCode int, raw []byte) json.RawMessage {
	if statusCode == http.StatusNoContent {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// IsEmpty reports whether the response carried no JSON payload.
func (r *Response) IsEmpty() bool {
	return r == nil || len(r.Body) == 0 || bytes.Equal(r.Body, []byte("null"))
}

// Decode unmarshals the JSON body into v. Empty and null bodies leave v untouched.
func (r *Response) Decode(v any) error {
	if r.IsEmpty() {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

// Result pairs the raw response with its decoded payload.
type Result[T any] struct {
	*Response
	Payload T
}

func decodeResult[T any](resp *Response) (*Result[T], error) {
	result := &Result[T]{Response: resp}
	if err := resp.Decode(&result.Payload); err != nil {
		return nil, err
	}
	return result, nil
}
