package outfmt

import (
	"context"
	"io"

	"github.com/fieldclimate/fieldclimate-cli/internal/filter"
)

type queryKey struct{}

// WithQuery adds a JQ query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the JQ query from context
func GetQuery(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// ApplyQuery converts v to generic JSON and applies the jq query to it.
func ApplyQuery(ctx context.Context, v any, query string) (any, error) {
	data, err := Generic(v)
	if err != nil {
		return nil, err
	}
	return filter.Apply(ctx, data, query)
}

// WriteJSONFiltered writes JSON with optional JQ filtering.
// Uses pretty-printed output by default; pass compact=true for single-line output.
func WriteJSONFiltered(ctx context.Context, w io.Writer, v any, query string, compact bool) error {
	result, err := ApplyQuery(ctx, v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}

// WriteJSONLines writes every query result on its own line. A result that is
// an array is spread one element per line.
func WriteJSONLines(ctx context.Context, w io.Writer, v any, query string) error {
	data, err := Generic(v)
	if err != nil {
		return err
	}
	results, err := filter.Values(ctx, data, query)
	if err != nil {
		return err
	}
	for _, result := range results {
		for _, line := range lines(result) {
			if err := WriteJSONMaybeCompact(w, line, true); err != nil {
				return err
			}
		}
	}
	return nil
}
