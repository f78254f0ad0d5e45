package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var fixedNow = time.Date(2012, 1, 14, 12, 0, 1, 0, time.UTC)

func newTestClient(baseURL string, signer Signer) *Client {
	client := New(signer)
	client.BaseURL = baseURL
	return client
}

func TestNew(t *testing.T) {
	client := NewHMAC(HMACCredentials{PublicKey: "pub", PrivateKey: "priv"})

	if client.BaseURL != DefaultBaseURL {
		t.Errorf("Expected BaseURL %s, got %s", DefaultBaseURL, client.BaseURL)
	}
	if client.HTTP == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if _, ok := client.Signer().(*HMACSigner); !ok {
		t.Errorf("Expected *HMACSigner, got %T", client.Signer())
	}
	if client.refresher != nil {
		t.Error("HMAC client should not have a token refresher")
	}
}

func TestNewOAuth2SharesHTTPClient(t *testing.T) {
	client := NewOAuth2(ClientCredentials{ClientID: "id", ClientSecret: "secret"}, nil)

	signer, ok := client.Signer().(*OAuth2Signer)
	if !ok {
		t.Fatalf("Expected *OAuth2Signer, got %T", client.Signer())
	}
	if signer.HTTP != client.HTTP {
		t.Error("signer should reuse the client's HTTP doer")
	}
	if client.refresher == nil {
		t.Error("OAuth2 client should have a token refresher")
	}
}

func TestRouteURL(t *testing.T) {
	tests := []struct {
		base     string
		route    string
		expected string
	}{
		{"https://api.fieldclimate.com/v1", "user", "https://api.fieldclimate.com/v1/user"},
		{"https://api.fieldclimate.com/v1/", "station/00000146", "https://api.fieldclimate.com/v1/station/00000146"},
		{"https://api.fieldclimate.com/v1", "", "https://api.fieldclimate.com/v1/"},
	}

	for _, tt := range tests {
		client := newTestClient(tt.base, NewHMACSigner(HMACCredentials{}))
		if got := client.routeURL(tt.route); got != tt.expected {
			t.Errorf("routeURL(%q) with base %q = %q, want %q", tt.route, tt.base, got, tt.expected)
		}
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody string
		expectError  bool
		expectBody   string
	}{
		{
			name:         "successful GET",
			statusCode:   http.StatusOK,
			responseBody: `{"username": "test"}`,
			expectBody:   `{"username": "test"}`,
		},
		{
			name:         "no content",
			statusCode:   http.StatusNoContent,
			responseBody: "",
		},
		{
			name:         "not found",
			statusCode:   http.StatusNotFound,
			responseBody: `{"message": "Station not found"}`,
			expectError:  true,
		},
		{
			name:         "server error",
			statusCode:   http.StatusInternalServerError,
			responseBody: `{"error": "internal error"}`,
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("Expected GET request, got %s", r.Method)
				}
				if r.URL.Path != "/v1/user" {
					t.Errorf("Expected path /v1/user, got %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			client := newTestClient(server.URL+"/v1", newTestHMACSigner(fixedNow))
			resp, err := client.Dispatch(context.Background(), http.MethodGet, "user", nil)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("Expected *APIError, got %T", err)
				}
				if apiErr.StatusCode != tt.statusCode {
					t.Errorf("Expected status %d, got %d", tt.statusCode, apiErr.StatusCode)
				}
				if apiErr.Route != "user" || apiErr.Method != http.MethodGet {
					t.Errorf("unexpected error context %s %s", apiErr.Method, apiErr.Route)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if resp.StatusCode != tt.statusCode {
				t.Errorf("Expected status %d, got %d", tt.statusCode, resp.StatusCode)
			}
			if tt.expectBody == "" {
				if resp.Body != nil {
					t.Errorf("Expected nil body, got %s", resp.Body)
				}
				if !resp.IsEmpty() {
					t.Error("Expected IsEmpty() to be true")
				}
				return
			}
			if string(resp.Body) != tt.expectBody {
				t.Errorf("Expected body %s, got %s", tt.expectBody, resp.Body)
			}
		})
	}
}

func TestDispatchSendsSignedHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Date"); got != "Sat, 14 Jan 2012 12:00:01 GMT" {
			t.Errorf("Date = %q", got)
		}
		want := "hmac " + testPublicKey + ":ca27b4017cb435c690f0724ead14c5a1b795f9fade04a80200bdc9b8cfeb1aef"
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
		if got := r.Header.Get("User-Agent"); got != "fieldclimate-test" {
			t.Errorf("User-Agent = %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, newTestHMACSigner(fixedNow))
	client.UserAgent = "fieldclimate-test"
	if _, err := client.Dispatch(context.Background(), http.MethodGet, "station/info", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestDispatchBody(t *testing.T) {
	tests := []struct {
		name            string
		body            any
		expectBody      string
		expectNoContent bool
	}{
		{name: "nil body sends nothing", body: nil, expectNoContent: true},
		{name: "map body is JSON", body: map[string]any{"name": map[string]string{"custom": "North field"}}, expectBody: `{"name":{"custom":"North field"}}`},
		{name: "empty object is still sent", body: map[string]any{}, expectBody: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				raw, _ := io.ReadAll(r.Body)
				ct := r.Header.Get("Content-Type")
				if tt.expectNoContent {
					if len(raw) != 0 {
						t.Errorf("Expected empty request body, got %s", raw)
					}
					if ct != "" {
						t.Errorf("Expected no Content-Type, got %q", ct)
					}
				} else {
					if string(raw) != tt.expectBody {
						t.Errorf("Expected body %s, got %s", tt.expectBody, raw)
					}
					if ct != "application/json" {
						t.Errorf("Expected Content-Type application/json, got %q", ct)
					}
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestHMACSigner(fixedNow))
			if _, err := client.Dispatch(context.Background(), http.MethodPut, "station/00000146", tt.body); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestDispatchErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		expectJSON  string
		expectMsg   string
	}{
		{name: "json object", status: 400, contentType: "application/json", body: `{"message":"Invalid station"}`, expectJSON: `{"message":"Invalid station"}`, expectMsg: "Invalid station"},
		{name: "literal null", status: 404, contentType: "application/json", body: `null`, expectJSON: `null`, expectMsg: "Not Found"},
		{name: "plain text 5xx", status: 502, contentType: "text/html", body: "Bad gateway", expectMsg: "Bad gateway"},
		{name: "empty body", status: 403, expectMsg: "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestHMACSigner(fixedNow))
			_, err := client.Dispatch(context.Background(), http.MethodGet, "user", nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %v", err)
			}
			if string(apiErr.Body) != tt.expectJSON {
				t.Errorf("Body = %q, want %q", apiErr.Body, tt.expectJSON)
			}
			if string(apiErr.Raw) != tt.body {
				t.Errorf("Raw = %q, want %q", apiErr.Raw, tt.body)
			}
			if apiErr.Message() != tt.expectMsg {
				t.Errorf("Message() = %q, want %q", apiErr.Message(), tt.expectMsg)
			}
		})
	}
}

func TestDispatchNonJSONSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, newTestHMACSigner(fixedNow))
	resp, err := client.Dispatch(context.Background(), http.MethodGet, "forecast/00000146/meteogram", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Body != nil {
		t.Errorf("Expected nil JSON body, got %s", resp.Body)
	}
	if string(resp.Raw) != "\x89PNG" {
		t.Errorf("Raw bytes not preserved: %q", resp.Raw)
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("Header not preserved")
	}
}

func TestDispatchMarshalError(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", newTestHMACSigner(fixedNow))
	_, err := client.Dispatch(context.Background(), http.MethodPost, "user", map[string]any{"bad": make(chan int)})
	if err == nil {
		t.Fatal("Expected marshal error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("marshal failure should not be an APIError")
	}
}

type errSigner struct{ err error }

func (s errSigner) Sign(context.Context, *Request) error { return s.err }

func TestDispatchSignerErrorStopsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	boom := errors.New("no credentials")
	client := newTestClient(server.URL, errSigner{err: boom})
	_, err := client.Dispatch(context.Background(), http.MethodGet, "user", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected signer error, got %v", err)
	}
	if called {
		t.Error("request should not be sent when signing fails")
	}
}

func TestDispatchContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL, newTestHMACSigner(fixedNow))
	_, err := client.Dispatch(ctx, http.MethodGet, "user", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestResponseDecode(t *testing.T) {
	tests := []struct {
		name string
		body json.RawMessage
		want string
	}{
		{"object", json.RawMessage(`{"username":"demo"}`), "demo"},
		{"null", json.RawMessage(`null`), "unchanged"},
		{"empty", nil, "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{Username: "unchanged"}
			resp := &Response{StatusCode: 200, Body: tt.body}
			if err := resp.Decode(&user); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if user.Username != tt.want {
				t.Errorf("Username = %q, want %q", user.Username, tt.want)
			}
		})
	}
}

func TestResponseDecodeBadShape(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: json.RawMessage(`["not","a","user"]`)}
	var user User
	if err := resp.Decode(&user); err == nil {
		t.Error("Expected decode error")
	}
}
