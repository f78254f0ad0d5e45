package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/cli"
	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
	"github.com/fieldclimate/fieldclimate-cli/internal/outfmt"
	"github.com/fieldclimate/fieldclimate-cli/internal/resolve"
	"github.com/fieldclimate/fieldclimate-cli/internal/validation"
)

// stationIDRegexp matches device serials, which are used as-is in routes.
var stationIDRegexp = regexp.MustCompile(`^[0-9A-Fa-f]{6,}$`)

// nowFunc is the clock used for relative --from/--to expressions.
var nowFunc = time.Now

// getJQQuery returns the jq query from --jq or --query flags.
// --jq takes precedence over --query for consistency with gh CLI.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// getClient creates an API client from the resolved credentials.
func getClient(cmd *cobra.Command) (*api.Client, error) {
	return newClientFactory(cmd).client()
}

// newTabWriter creates a tabwriter for text output
func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func newTabWriterFromCmd(cmd *cobra.Command) *tabwriter.Writer {
	ioStreams := iocontext.GetIO(cmd.Context())
	return newTabWriter(ioStreams.Out)
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

// printJSON outputs data as JSON with optional query/template filtering
func printJSON(cmd *cobra.Command, v any) error {
	ctx := cmd.Context()
	ioStreams := iocontext.GetIO(ctx)
	query := outfmt.GetQuery(ctx)
	if tmpl := outfmt.GetTemplate(ctx); tmpl != "" {
		filtered, err := outfmt.ApplyQuery(ctx, v, query)
		if err != nil {
			return err
		}
		return outfmt.WriteTemplate(ioStreams.Out, filtered, tmpl)
	}
	if outfmt.IsJSONL(ctx) {
		return outfmt.WriteJSONLines(ctx, ioStreams.Out, v, query)
	}
	return outfmt.WriteJSONFiltered(ctx, ioStreams.Out, v, query, outfmt.IsCompact(ctx))
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.WriteJSON(ioStreams.ErrOut, v)
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func isCSV(cmd *cobra.Command) bool {
	return outfmt.IsCSV(cmd.Context())
}

// printIfNotQuiet prints to stdout only if not in quiet mode
func printIfNotQuiet(cmd *cobra.Command, format string, args ...any) {
	if !flags.Quiet {
		ioStreams := iocontext.GetIO(cmd.Context())
		_, _ = fmt.Fprintf(ioStreams.Out, format, args...)
	}
}

func printAction(cmd *cobra.Command, action, resource string, id any, name string) {
	if flags.Quiet || isJSON(cmd) {
		return
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	message := fmt.Sprintf("%s %s", action, resource)
	if id != nil {
		if value, ok := id.(string); !ok || value != "" {
			message = fmt.Sprintf("%s %v", message, id)
		}
	}
	if name != "" {
		message = fmt.Sprintf("%s: %s", message, name)
	}
	_, _ = fmt.Fprintln(ioStreams.Out, message)
}

// printResponse renders a payload-agnostic response. JSON modes and
// templates go through the formatter; text mode prints indented JSON.
func printResponse(cmd *cobra.Command, resp *api.Response, emptyMessage string) error {
	if isCSV(cmd) {
		return errCSVUnsupported
	}
	f := newFormatter(cmd)
	if resp.IsEmpty() {
		if !f.Structured() {
			if !flags.Quiet {
				f.Empty(emptyMessage)
			}
			return nil
		}
		return f.Output(map[string]any{})
	}
	if f.Structured() {
		return f.Output(resp.Body)
	}
	data, err := outfmt.Generic(resp.Body)
	if err != nil {
		return err
	}
	return outfmt.WriteJSON(iocontext.GetIO(cmd.Context()).Out, data)
}

// printMutation reports a write. The API answers most writes with an empty
// body, so text mode prints a one-line confirmation instead.
func printMutation(cmd *cobra.Command, resp *api.Response, action, resource string, id any) error {
	if isCSV(cmd) {
		return errCSVUnsupported
	}
	if isJSON(cmd) || outfmt.GetTemplate(cmd.Context()) != "" {
		if resp.IsEmpty() {
			return printJSON(cmd, map[string]any{"status": resp.StatusCode})
		}
		return printJSON(cmd, resp.Body)
	}
	printAction(cmd, action, resource, id, "")
	if !resp.IsEmpty() && !flags.Quiet {
		return printResponse(cmd, resp, "")
	}
	return nil
}

type confirmOptions struct {
	Prompt              string
	Expected            string
	CancelMessage       string
	Force               bool
	RequireForceForJSON bool
}

// confirmAction asks for confirmation on stdin. --force and --dry-run skip
// the prompt.
func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.DryRun {
		opts.Force = true
	}
	if opts.RequireForceForJSON && isJSON(cmd) && !opts.Force {
		return false, fmt.Errorf("--force flag is required when using --output json")
	}
	if opts.Force {
		return true, nil
	}

	out := cmd.OutOrStdout()
	if opts.Prompt != "" {
		_, _ = fmt.Fprint(out, opts.Prompt)
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	reader := bufio.NewReader(ioStreams.In)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}

	response = strings.TrimSpace(strings.ToLower(response))
	expected := strings.TrimSpace(strings.ToLower(opts.Expected))
	if expected == "" {
		expected = "y"
	}
	if response != expected {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}

	return true, nil
}

// cmdContext returns the command context
func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

// normalizeEnum normalizes and validates a flag value against a list of valid enum values.
// It lowercases and trims the input, then tries exact match followed by unique prefix match.
// Returns the matched valid value or an error.
func normalizeEnum(flagName, input string, valid []string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", api.NewValidationError(flagName, input, valid)
	}

	for _, v := range valid {
		if input == v {
			return v, nil
		}
	}

	var matches []string
	for _, v := range valid {
		if strings.HasPrefix(v, input) {
			matches = append(matches, v)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", api.NewValidationError(flagName, input, valid)
	default:
		return "", fmt.Errorf("ambiguous %s %q: matches %s", flagName, input, strings.Join(matches, ", "))
	}
}

// optionalEnum is normalizeEnum for flags whose empty value means "unset".
func optionalEnum(flagName, input string, valid []string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	return normalizeEnum(flagName, input, valid)
}

func splitCommaList(value string) []string {
	parts := strings.Split(value, ",")
	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// segmentArg validates a value that becomes one route segment.
func segmentArg(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if err := validation.ValidateSegment(value, field); err != nil {
		return "", err
	}
	return value, nil
}

// optionalSegment is segmentArg for optional route segments.
func optionalSegment(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return segmentArg(value, field)
}

// parseAmount parses a positive count argument such as the N of "last N".
func parseAmount(value, field string) (int, error) {
	return validation.ParsePositiveInt(value, field)
}

// readBody loads a JSON request body from an inline value, "-" (stdin) or
// "@path". The body must be valid JSON.
func readBody(cmd *cobra.Command, arg string) (json.RawMessage, error) {
	data, err := iocontext.GetIO(cmd.Context()).ReadBody(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := validation.ValidateJSONPayload(data); err != nil {
		return nil, err
	}
	data = []byte(strings.TrimSpace(string(data)))
	if !json.Valid(data) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return json.RawMessage(data), nil
}

// optionalBody is readBody for commands where the body may be omitted.
func optionalBody(cmd *cobra.Command, arg string) (any, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, nil
	}
	return readBody(cmd, arg)
}

// parseTimestamp accepts unix seconds or anything cli.ParseRelativeTime
// understands ("2d ago", "yesterday", "2024-05-01", RFC3339).
func parseTimestamp(flagName, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("--%s is required", flagName)
	}
	if strings.EqualFold(value, "now") {
		return nowFunc().Unix(), nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid --%s %q: must not be negative", flagName, value)
		}
		return secs, nil
	}
	t, err := cli.ParseRelativeTime(value, nowFunc())
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", flagName, err)
	}
	if t.Unix() < 0 {
		return 0, fmt.Errorf("invalid --%s %q: must not be before 1970-01-01", flagName, value)
	}
	return t.Unix(), nil
}

// parseOptionalTimestamp returns 0 for an unset flag. Routes omit zero
// timestamps.
func parseOptionalTimestamp(flagName, value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return parseTimestamp(flagName, value)
}

// parseRange parses --from (required) and --to (optional).
func parseRange(from, to string) (int64, int64, error) {
	fromTS, err := parseTimestamp("from", from)
	if err != nil {
		return 0, 0, err
	}
	toTS, err := parseOptionalTimestamp("to", to)
	if err != nil {
		return 0, 0, err
	}
	if toTS != 0 && toTS < fromTS {
		return 0, 0, fmt.Errorf("--to must not be before --from")
	}
	return fromTS, toTS, nil
}

// resolveStationID turns a serial or a station's custom name into a serial.
// Serials are used without a lookup; names are matched against the user's
// stations.
func resolveStationID(ctx context.Context, client *api.Client, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("station is required")
	}
	if stationIDRegexp.MatchString(arg) {
		return arg, nil
	}
	result, err := client.User().Stations(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list stations for %q: %w", arg, err)
	}
	id, err := resolve.StationID(arg, result.Payload)
	if err != nil {
		return "", err
	}
	return segmentArg(id, "station ID")
}

// stationArg builds a client and resolves the station argument in one step.
func stationArg(cmd *cobra.Command, arg string) (*api.Client, string, error) {
	client, err := getClient(cmd)
	if err != nil {
		return nil, "", err
	}
	id, err := resolveStationID(cmdContext(cmd), client, arg)
	if err != nil {
		return nil, "", err
	}
	return client, id, nil
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed.  This lets aliases satisfy Cobra's
// MarkFlagRequired check transparently.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// aliasBridgeSliceValue extends aliasBridgeValue to also forward the
// pflag.SliceValue interface (Append, Replace, GetSlice) when the
// underlying Value supports it.
type aliasBridgeSliceValue struct {
	aliasBridgeValue
	slice pflag.SliceValue
}

func (v *aliasBridgeSliceValue) Append(s string) error     { return v.slice.Append(s) }
func (v *aliasBridgeSliceValue) Replace(ss []string) error { return v.slice.Replace(ss) }
func (v *aliasBridgeSliceValue) GetSlice() []string        { return v.slice.GetSlice() }

// flagAlias registers a hidden alias for an existing flag.
// Both flags share the same underlying Value, so setting either one sets both.
// The alias is annotated so flagOrAliasChanged() can detect it.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	bridge := &aliasBridgeValue{Value: f.Value, canonical: f}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		a.Value = &aliasBridgeSliceValue{aliasBridgeValue: *bridge, slice: sv}
	} else {
		a.Value = bridge
	}
	// The alias never carries the "required" annotation; the canonical
	// flag enforces that.
	newAnn := map[string][]string{"alias-of": {name}}
	for k, v := range f.Annotations {
		if k == cobra.BashCompOneRequiredFlag {
			continue
		}
		newAnn[k] = v
	}
	a.Annotations = newAnn
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) {
		return true
	}
	if cmd.InheritedFlags().Changed(name) {
		return true
	}

	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if found {
				return
			}
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name {
				if fs.Changed(f.Name) {
					found = true
				}
			}
		})
		return found
	}

	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			if isJSON(cmd) {
				if structured := api.StructuredErrorFromError(err); structured != nil {
					_ = printJSONErr(cmd, structured)
				}
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			}
			// Tests still inspect the original message through Error().
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}
