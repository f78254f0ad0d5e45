// Package debug provides context-based debug mode with structured logging.
package debug

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// SetupLogger configures slog based on debug mode.
func SetupLogger(debugEnabled bool) {
	slog.SetDefault(NewLogger(os.Stderr, debugEnabled))
}

// NewLogger returns a text logger at debug level when enabled, warn otherwise.
func NewLogger(w io.Writer, debugEnabled bool) *slog.Logger {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

var secretHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"Set-Cookie":    true,
}

// RedactHeaders returns a copy of h that is safe to log. Credentials keep
// their scheme word and key id but lose the secret part.
func RedactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for name, values := range out {
		if !secretHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		for i, v := range values {
			values[i] = redactValue(v)
		}
	}
	return out
}

// redactValue keeps "hmac <public key>" and "Bearer" prefixes. The signature
// or token after them is replaced.
func redactValue(v string) string {
	fields := strings.Fields(v)
	if len(fields) < 2 {
		return "[redacted]"
	}
	last := fields[len(fields)-1]
	if pub, _, ok := strings.Cut(last, ":"); ok && strings.EqualFold(fields[0], "hmac") {
		fields[len(fields)-1] = pub + ":[redacted]"
	} else {
		fields[len(fields)-1] = "[redacted]"
	}
	return strings.Join(fields, " ")
}
