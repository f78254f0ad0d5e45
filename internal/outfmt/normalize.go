package outfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Generic converts v into the plain JSON shape jq and templates work on:
// map[string]any, []any, float64, string, bool and nil.
//
// Raw JSON documents are decoded as-is. Typed values go through a marshal
// round trip so their json tags decide the keys.
func Generic(v any) (any, error) {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		raw = val
	case []byte:
		if !json.Valid(val) {
			return string(val), nil
		}
		raw = val
	case map[string]any, []any, string, float64, bool:
		return val, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode output: %w", err)
		}
		raw = b
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	return out, nil
}

// lines spreads a top-level array into its elements for JSONL output.
func lines(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	return []any{v}
}
