package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldclimate/fieldclimate-cli/internal/debug"
)

const (
	DefaultBaseURL = "https://api.fieldclimate.com/v1"
	DefaultTimeout = 30 * time.Second
)

// HTTPDoer performs a single HTTP round trip. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the FieldClimate API client.
//
// Every request is signed by the Signer chosen at construction. If that
// signer is also a TokenRefresher, a 401 answer triggers one refresh and one
// retry; a second 401 is returned to the caller. No other status is retried.
type Client struct {
	BaseURL   string
	HTTP      HTTPDoer
	UserAgent string

	signer    Signer
	refresher TokenRefresher
}

var _ Requester = (*Client)(nil)

// New creates a client that signs requests with signer.
func New(signer Signer) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	c := &Client{
		BaseURL: DefaultBaseURL,
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		signer: signer,
	}
	if refresher, ok := signer.(TokenRefresher); ok {
		c.refresher = refresher
	}
	return c
}

// NewHMAC creates a client authenticated with an HMAC key pair.
func NewHMAC(creds HMACCredentials) *Client {
	return New(NewHMACSigner(creds))
}

// NewOAuth2 creates a client authenticated with OAuth2 bearer tokens.
// The signer's token requests share the client's timeout.
func NewOAuth2(creds ClientCredentials, codes AuthCodeProvider) *Client {
	signer := NewOAuth2Signer(creds, codes)
	c := New(signer)
	signer.HTTP = c.HTTP
	return c
}

// Signer returns the signer the client was built with.
func (c *Client) Signer() Signer {
	return c.signer
}

func (c *Client) routeURL(route string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + route
}

// Dispatch signs and sends one API call. Statuses >= 300 come back as *APIError.
func (c *Client) Dispatch(ctx context.Context, method, route string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	id := uuid.NewString()
	for attempt := 1; ; attempt++ {
		req := NewRequest(method, route, body)
		if err := c.signer.Sign(ctx, req); err != nil {
			return nil, err
		}

		resp, err := c.send(ctx, req, payload, id, attempt)
		if err == nil {
			return resp, nil
		}

		var apiErr *APIError
		if attempt == 1 && c.refresher != nil && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			if debug.IsEnabled(ctx) {
				slog.Debug("access token rejected, refreshing", "id", id, "route", route)
			}
			if err := c.refresher.Refresh(ctx, req); err != nil {
				return nil, err
			}
			continue
		}
		return nil, err
	}
}

func (c *Client) send(ctx context.Context, req *Request, payload []byte, id string, attempt int) (*Response, error) {
	start := time.Now()
	url := c.routeURL(req.Route)

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = req.Headers.Clone()
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	if debug.IsEnabled(ctx) {
		slog.Debug("sending request", "id", id, "method", req.Method, "url", url, "attempt", attempt, "headers", debug.RedactHeaders(httpReq.Header))
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "id", id, "method", req.Method, "url", url, "attempt", attempt, "error", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "id", id, "method", req.Method, "url", url, "status", resp.StatusCode, "attempt", attempt, "duration", time.Since(start))
	}

	if resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			Route:      req.Route,
			Body:       jsonBody(resp.StatusCode, raw),
			Raw:        raw,
		}
	}
	return newResponse(resp.StatusCode, resp.Header, raw), nil
}
