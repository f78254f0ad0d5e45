// Package filter applies jq expressions (via gojq) to API payloads.
package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// NormalizeExpression fixes shell-escaped operators in jq expressions.
// Zsh escapes ! to \! even in single quotes, breaking operators like !=.
func NormalizeExpression(expr string) string {
	return strings.ReplaceAll(expr, `\!`, `!`)
}

// Compile parses a jq expression after normalizing it.
func Compile(expression string) (*gojq.Query, error) {
	query, err := gojq.Parse(NormalizeExpression(expression))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return query, nil
}

// Values runs expression against data and returns every result it emits.
// data must already be in the generic JSON shape (map[string]any, []any,
// float64, string, bool, nil).
func Values(ctx context.Context, data any, expression string) ([]any, error) {
	if expression == "" {
		return []any{data}, nil
	}
	query, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	iter := query.RunWithContext(ctx, data)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

// Apply runs expression and collapses a single result to a scalar value.
// Zero or several results come back as a slice.
func Apply(ctx context.Context, data any, expression string) (any, error) {
	if expression == "" {
		return data, nil
	}
	results, err := Values(ctx, data, expression)
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// ApplyFromJSON decodes raw JSON and applies expression to it.
func ApplyFromJSON(ctx context.Context, raw []byte, expression string) (any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Apply(ctx, data, expression)
}

// ApplyToJSON is ApplyFromJSON with the result re-encoded as indented JSON.
func ApplyToJSON(ctx context.Context, raw []byte, expression string) ([]byte, error) {
	if expression == "" {
		return raw, nil
	}
	result, err := ApplyFromJSON(ctx, raw, expression)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(result, "", "  ")
}
