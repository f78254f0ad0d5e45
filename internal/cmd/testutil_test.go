// Test utilities for the fieldclimate CLI commands.
//
// Commands run against an httptest server. setupTestEnvWithHandler points
// FIELDCLIMATE_BASE_URL at the server and sets an HMAC key pair, so every
// command signs requests the way it would against the real API:
//
//	handler := newRouteHandler().
//	    On("GET", "/user/stations", jsonResponse(200, `[{"name":{"original":"00000146"}}]`))
//	setupTestEnvWithHandler(t, handler)
//
//	output := captureStdout(t, func() {
//	    if err := Execute(context.Background(), []string{"user", "stations"}); err != nil {
//	        t.Fatalf("command failed: %v", err)
//	    }
//	})
//
// Routes match on "METHOD PATH"; unmatched requests get a JSON 404.
package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/fieldclimate/fieldclimate-cli/internal/config"
)

const (
	testPublicKey  = "test-public-key"
	testPrivateKey = "test-private-key"
)

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	return <-done
}

// captureStderr executes a function and captures its stderr output.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stderr = old
	return <-done
}

// testEnv gives tests access to the mock server.
type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

// isolateEnv clears every FIELDCLIMATE_* variable and points HOME at a
// temporary directory so no ~/.fieldclimate/.env is loaded.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvHMACPublicKey,
		config.EnvHMACPrivateKey,
		config.EnvClientID,
		config.EnvClientSecret,
		config.EnvBaseURL,
		config.EnvAuthMethod,
		config.EnvProfile,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FIELDCLIMATE_OUTPUT", "text")
}

// setupTestEnv creates a mock server answering every request with handler.
func setupTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	return setupTestEnvWithHandler(t, handler)
}

// setupTestEnvWithHandler creates a mock server and configures HMAC
// credentials from the environment. Everything is restored on cleanup.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	isolateEnv(t)
	t.Setenv(config.EnvBaseURL, server.URL)
	t.Setenv(config.EnvHMACPublicKey, testPublicKey)
	t.Setenv(config.EnvHMACPrivateKey, testPrivateKey)

	return &testEnv{t: t, server: server}
}

// jsonResponse creates an http.HandlerFunc that returns a JSON response with
// the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// noContent answers 204 with an empty body, as most FieldClimate writes do.
func noContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// recordedRequest is what a capture handler saw.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// requestRecorder collects requests and answers each with next.
type requestRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (rr *requestRecorder) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rr.mu.Lock()
		rr.requests = append(rr.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		rr.mu.Unlock()
		next(w, r)
	}
}

func (rr *requestRecorder) all() []recordedRequest {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]recordedRequest(nil), rr.requests...)
}

// routeHandler routes requests by exact "METHOD PATH".
type routeHandler struct {
	routes map[string]http.HandlerFunc
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path. The path
// includes the leading slash, for example "/station/00000146".
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if handler, ok := rh.routes[key]; ok {
		handler(w, r)
		return
	}
	jsonResponse(http.StatusNotFound, `{"message":"route not found: `+key+`"}`)(w, r)
}

func TestTestInfrastructure(t *testing.T) {
	t.Run("setupTestEnv sets environment variables", func(t *testing.T) {
		env := setupTestEnv(t, jsonResponse(200, `{"status": "ok"}`))

		if os.Getenv(config.EnvBaseURL) != env.server.URL {
			t.Error("FIELDCLIMATE_BASE_URL not set correctly")
		}
		if os.Getenv(config.EnvHMACPublicKey) != testPublicKey {
			t.Error("FIELDCLIMATE_HMAC_PUBLIC_KEY not set correctly")
		}
	})

	t.Run("routeHandler routes requests correctly", func(t *testing.T) {
		handler := newRouteHandler().
			On("GET", "/system/status", jsonResponse(200, `true`)).
			On("POST", "/disease/00000146/last/7d", jsonResponse(200, `[]`))

		env := setupTestEnvWithHandler(t, handler)

		resp, err := http.Get(env.server.URL + "/system/status")
		if err != nil {
			t.Fatalf("GET request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		resp, err = http.Post(env.server.URL+"/disease/00000146/last/7d", "application/json", nil)
		if err != nil {
			t.Fatalf("POST request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		resp, err = http.Get(env.server.URL + "/unknown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("expected status 404 for unknown route, got %d", resp.StatusCode)
		}
	})
}

// decodeJSON parses command output as JSON.
func decodeJSON(t *testing.T, output string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(output), &v); err != nil {
		t.Fatalf("output is not valid JSON: %v, output: %s", err, output)
	}
	return v
}
