// Package dryrun previews mutating API calls without sending them.
package dryrun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/fieldclimate/fieldclimate-cli/internal/debug"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview represents a dry-run preview of an operation
type Preview struct {
	Operation   string
	Resource    string
	Description string
	Details     map[string]interface{}
	Warnings    []string
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would %s %s\n", p.Operation, p.Resource)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", p.Description)
	}

	if len(p.Details) > 0 {
		keys := make([]string, 0, len(p.Details))
		for k := range p.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, p.Details[k])
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}

// HTTPDoer performs a single HTTP round trip.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Doer forwards reads to Next and answers every other method with a
// synthetic 204 after writing a preview to Out. Signed headers are redacted
// in the preview.
type Doer struct {
	Next HTTPDoer
	Out  io.Writer
}

// Do implements HTTPDoer.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return d.Next.Do(req)
	}

	p := &Preview{
		Operation: strings.ToUpper(req.Method),
		Resource:  req.URL.String(),
		Details:   map[string]interface{}{},
	}
	for name, values := range debug.RedactHeaders(req.Header) {
		p.Details["header "+name] = strings.Join(values, ", ")
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if len(body) > 0 {
			p.Description = string(body)
		}
	}
	if req.Method == http.MethodDelete {
		p.Warnings = append(p.Warnings, "This action is irreversible")
	}
	p.Write(d.Out)

	return &http.Response{
		Status:     "204 No Content",
		StatusCode: http.StatusNoContent,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Request:    req,
	}, nil
}
