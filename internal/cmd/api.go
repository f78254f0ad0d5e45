package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
	"github.com/fieldclimate/fieldclimate-cli/internal/validation"
)

var apiMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

func newAPICmd() *cobra.Command {
	var method string
	var fields []string
	var rawFields []string
	var inputFile string
	var jsonBody string
	var silent bool
	var includeHeaders bool

	cmd := &cobra.Command{
		Use:   "api <route>",
		Short: "Make raw requests to any FieldClimate endpoint",
		Long: `Make raw, signed requests to any FieldClimate API route.

The route is relative to the API base URL, so "station/00000146" becomes
  https://api.fieldclimate.com/v1/station/00000146

Requests are signed exactly like the dedicated commands (HMAC or OAuth2).`,
		Example: `  # GET request (default)
  fieldclimate api user/stations

  # PUT with fields
  fieldclimate api station/00000146 -X PUT -F 'name={"custom":"Orchard"}'

  # POST a custom data request body from a file
  fieldclimate api data/optimized/00000146/hourly/last/7d -X POST -i body.json

  # Read body from stdin
  echo '[{"ch":1,"code":506,"name":"Air"}]' | fieldclimate api station/00000146/sensors -X PUT -i -

  # Filter response with jq
  fieldclimate api system/countries --jq '.[0]'

  # Show response status and headers
  fieldclimate api system/status --include`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			route := strings.TrimLeft(strings.TrimSpace(args[0]), "/")
			if route == "" {
				return fmt.Errorf("route is required")
			}
			out := cmd.OutOrStdout()

			method = strings.ToUpper(strings.TrimSpace(method))
			valid := false
			for _, m := range apiMethods {
				if method == m {
					valid = true
				}
			}
			if !valid {
				return fmt.Errorf("invalid HTTP method %q: must be one of %s", method, strings.Join(apiMethods, ", "))
			}

			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("cannot use both --body and --input flags")
			}

			body, err := buildRequestBody(cmd, fields, rawFields, inputFile, jsonBody)
			if err != nil {
				return err
			}

			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.Dispatch(cmdContext(cmd), method, route, body)
			if err != nil {
				return err
			}

			if silent {
				return nil
			}

			if isJSON(cmd) {
				return printJSON(cmd, apiJSONPayload(resp.Raw, resp.Header, resp.StatusCode, includeHeaders))
			}

			if includeHeaders {
				_, _ = fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)
				keys := make([]string, 0, len(resp.Header))
				for k := range resp.Header {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					for _, v := range resp.Header[k] {
						_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
					}
				}
				_, _ = fmt.Fprintln(out)
			}

			if len(resp.Raw) > 0 {
				var jsonData any
				if err := json.Unmarshal(resp.Raw, &jsonData); err == nil {
					prettyJSON, err := json.MarshalIndent(jsonData, "", "  ")
					if err == nil {
						_, _ = fmt.Fprintln(out, string(prettyJSON))
						return nil
					}
				}
				_, _ = fmt.Fprintln(out, string(resp.Raw))
			}

			return nil
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method (GET, POST, PUT, DELETE)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "body", "d", "", "Request body as inline JSON")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Suppress output")
	cmd.Flags().BoolVar(&includeHeaders, "include", false, "Include response status and headers in output")
	flagAlias(cmd.Flags(), "include", "inc")

	return cmd
}

func apiJSONPayload(respBody []byte, headers map[string][]string, statusCode int, includeHeaders bool) any {
	body := apiJSONBody(respBody)
	if !includeHeaders {
		return body
	}
	return map[string]any{
		"status":  statusCode,
		"headers": headers,
		"body":    body,
	}
}

func apiJSONBody(respBody []byte) any {
	if len(respBody) == 0 {
		return nil
	}
	if !json.Valid(respBody) {
		return string(respBody)
	}
	pretty := &bytes.Buffer{}
	if err := json.Indent(pretty, respBody, "", "  "); err != nil {
		return json.RawMessage(respBody)
	}
	return json.RawMessage(pretty.Bytes())
}

// buildRequestBody constructs the request body from --body/--input and
// key=value fields. Any JSON document is accepted as a base body; fields can
// only be merged into an object.
func buildRequestBody(cmd *cobra.Command, fields, rawFields []string, inputFile, jsonBody string) (any, error) {
	var base any

	if jsonBody != "" {
		if err := json.Unmarshal([]byte(jsonBody), &base); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	if inputFile != "" {
		arg := inputFile
		if arg != "-" {
			arg = "@" + arg
		}
		inputData, err := iocontext.GetIO(cmd.Context()).ReadBody(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if err := validation.ValidateJSONPayload(inputData); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(inputData, &base); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	if len(fields) == 0 && len(rawFields) == 0 {
		return base, nil
	}

	body, ok := base.(map[string]any)
	if base != nil && !ok {
		return nil, fmt.Errorf("--field/--raw-field need a JSON object body, got %T", base)
	}
	if body == nil {
		body = make(map[string]any)
	}

	for _, field := range fields {
		key, value, err := parseField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	for _, field := range rawFields {
		key, value, err := parseRawField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	return body, nil
}

// parseField parses a key=value field where value is a string
func parseField(field string) (string, string, error) {
	parts := strings.SplitN(field, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return parts[0], parts[1], nil
}

// parseRawField parses a key=value field where value is JSON
func parseRawField(field string) (string, any, error) {
	parts := strings.SplitN(field, "=", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid raw field format %q: must be key=value", field)
	}

	key := parts[0]
	var value any
	if err := json.Unmarshal([]byte(parts[1]), &value); err != nil {
		return "", nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
	}

	return key, value, nil
}
