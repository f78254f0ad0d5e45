package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
	"github.com/fieldclimate/fieldclimate-cli/internal/outfmt"
	"github.com/fieldclimate/fieldclimate-cli/internal/resolve"
)

var sortOrders = []string{api.SortAsc, api.SortDesc}

func newStationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "station",
		Aliases: []string{"stations", "st"},
		Short:   "Manage stations",
		Long: strings.TrimSpace(`
Read and change station settings, sensors, events and transmission history.

A station can be given by its serial (for example 00000146) or by its custom
name; names are matched against the stations on your account.`),
	}

	cmd.AddCommand(newStationInfoCmd())
	cmd.AddCommand(newStationUpdateCmd())
	cmd.AddCommand(newStationSensorsCmd())
	cmd.AddCommand(newStationNodesCmd())
	cmd.AddCommand(newStationSerialsCmd())
	cmd.AddCommand(newStationAddCmd())
	cmd.AddCommand(newStationRemoveCmd())
	cmd.AddCommand(newStationProximityCmd())
	cmd.AddCommand(newStationEventsCmd())
	cmd.AddCommand(newStationHistoryCmd())
	cmd.AddCommand(newStationLicensesCmd())

	return cmd
}

// resolveStationIDs resolves several station arguments, listing the
// account's stations at most once.
func resolveStationIDs(ctx context.Context, client *api.Client, args []string) ([]string, error) {
	var stations []api.Station
	loaded := false
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if stationIDRegexp.MatchString(arg) {
			ids = append(ids, arg)
			continue
		}
		if !loaded {
			result, err := client.User().Stations(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list stations for %q: %w", arg, err)
			}
			stations = result.Payload
			loaded = true
		}
		id, err := resolve.StationID(arg, stations)
		if err != nil {
			return nil, err
		}
		id, err = segmentArg(id, "station ID")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newStationInfoCmd() *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:     "info <station>...",
		Aliases: []string{"get", "show"},
		Short:   "Show station information",
		Long:    "Show station information. Several stations are fetched concurrently.",
		Example: strings.TrimSpace(`
  # One station by serial
  fieldclimate station info 00000146

  # By custom name
  fieldclimate station info "North field"

  # Several stations as JSON
  fieldclimate station info 00000146 0120821E -o json
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			ids, err := resolveStationIDs(ctx, client, args)
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				resp, err := client.Station().Info(ctx, ids[0])
				if err != nil {
					return fmt.Errorf("failed to get station %s: %w", ids[0], err)
				}
				return printResponse(cmd, resp, "No station information returned")
			}

			if isCSV(cmd) {
				return errCSVUnsupported
			}
			ioStreams := iocontext.GetIO(ctx)
			results := runBulkOperation(ctx, ids, concurrency, !flags.Quiet && !isJSON(cmd), ioStreams.ErrOut,
				func(ctx context.Context, id string) (json.RawMessage, error) {
					resp, err := client.Station().Info(ctx, id)
					if err != nil {
						return nil, err
					}
					return resp.Body, nil
				})

			return printStationResults(cmd, results)
		}),
	}

	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum concurrent requests")
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}

func printStationResults(cmd *cobra.Command, results []BulkResult) error {
	_, failure := countResults(results)

	f := newFormatter(cmd)
	if f.Structured() {
		items := make([]map[string]any, 0, len(results))
		for _, r := range results {
			item := map[string]any{"station": r.ID}
			if r.Success {
				item["info"] = r.Data
			} else {
				item["error"] = r.Error.Error()
			}
			items = append(items, item)
		}
		if err := f.Output(items); err != nil {
			return err
		}
	} else {
		out := iocontext.GetIO(cmd.Context()).Out
		for i, r := range results {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintf(out, "== %s ==\n", r.ID)
			if !r.Success {
				_, _ = fmt.Fprintf(out, "error: %v\n", r.Error)
				continue
			}
			data, err := outfmt.Generic(r.Data)
			if err != nil {
				return err
			}
			if err := outfmt.WriteJSON(out, data); err != nil {
				return err
			}
		}
	}

	if failure > 0 {
		return fmt.Errorf("failed to get %d of %d stations", failure, len(results))
	}
	return nil
}

func newStationUpdateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <station>",
		Short: "Update station settings",
		Example: strings.TrimSpace(`
  # Rename a station
  fieldclimate station update 00000146 --data '{"name":{"custom":"Orchard"}}'
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Station().Update(cmdContext(cmd), id, body)
			if err != nil {
				return fmt.Errorf("failed to update station %s: %w", id, err)
			}
			return printMutation(cmd, resp, "Updated", "station", id)
		}),
	}

	addDataFlag(cmd, &data, true)
	return cmd
}

// addDataFlag registers the --data body flag shared by write commands.
func addDataFlag(cmd *cobra.Command, data *string, required bool) {
	usage := "JSON body: inline, @file or - for stdin"
	if required {
		usage += " (required)"
	}
	cmd.Flags().StringVarP(data, "data", "d", "", usage)
	if required {
		_ = cmd.MarkFlagRequired("data")
	}
	flagAlias(cmd.Flags(), "data", "dt")
}

// stationReadCmd builds "<name> <station>" commands that only read.
func stationReadCmd(use, short, empty string, fetch func(context.Context, *api.Client, string) (*api.Response, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <station>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := fetch(cmdContext(cmd), client, id)
			if err != nil {
				return fmt.Errorf("failed to get %s of station %s: %w", use, id, err)
			}
			return printResponse(cmd, resp, empty)
		}),
	}
}

// stationWriteCmd builds "<name> update <station> --data" commands.
func stationWriteCmd(resource string, send func(context.Context, *api.Client, string, any) (*api.Response, error)) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <station>",
		Short: "Update station " + resource,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := send(cmdContext(cmd), client, id, body)
			if err != nil {
				return fmt.Errorf("failed to update %s of station %s: %w", resource, id, err)
			}
			return printMutation(cmd, resp, "Updated", resource+" of station", id)
		}),
	}

	addDataFlag(cmd, &data, true)
	return cmd
}

func newStationSensorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensors <station>",
		Short: "List station sensors",
		Example: strings.TrimSpace(`
  # Sensors of a station
  fieldclimate station sensors 00000146

  # CSV export
  fieldclimate station sensors 00000146 -o csv

  # Rename a sensor
  fieldclimate station sensors update 00000146 --data '[{"ch":1,"code":506,"name":"Air"}]'
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := client.Station().Sensors(cmdContext(cmd), id)
			if err != nil {
				return fmt.Errorf("failed to list sensors of station %s: %w", id, err)
			}
			return printSensors(cmd, result)
		}),
	}

	cmd.AddCommand(stationWriteCmd("sensors", func(ctx context.Context, c *api.Client, id string, body any) (*api.Response, error) {
		return c.Station().UpdateSensors(ctx, id, body)
	}))
	return cmd
}

func newStationNodesCmd() *cobra.Command {
	cmd := stationReadCmd("nodes", "List wireless node names", "No nodes found",
		func(ctx context.Context, c *api.Client, id string) (*api.Response, error) {
			return c.Station().Nodes(ctx, id)
		})
	cmd.AddCommand(stationWriteCmd("nodes", func(ctx context.Context, c *api.Client, id string, body any) (*api.Response, error) {
		return c.Station().UpdateNodes(ctx, id, body)
	}))
	return cmd
}

func newStationSerialsCmd() *cobra.Command {
	cmd := stationReadCmd("serials", "Show sensor serial settings", "No serials found",
		func(ctx context.Context, c *api.Client, id string) (*api.Response, error) {
			return c.Station().Serials(ctx, id)
		})
	cmd.AddCommand(stationWriteCmd("serials", func(ctx context.Context, c *api.Client, id string, body any) (*api.Response, error) {
		return c.Station().UpdateSerials(ctx, id, body)
	}))
	return cmd
}

func newStationLicensesCmd() *cobra.Command {
	return stationReadCmd("licenses", "List station licenses", "No licenses found",
		func(ctx context.Context, c *api.Client, id string) (*api.Response, error) {
			return c.Station().Licenses(ctx, id)
		})
}

func newStationAddCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "add <station> <key>",
		Short: "Add a station to your account",
		Long:  "Attach a station using the key printed on the device (key 1 or key 2).",
		Example: strings.TrimSpace(`
  fieldclimate station add 00000146 ABCD1234
  fieldclimate station add 00000146 ABCD1234 --data '{"name":"Orchard"}'
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := segmentArg(args[0], "station ID")
			if err != nil {
				return err
			}
			key, err := segmentArg(args[1], "station key")
			if err != nil {
				return err
			}
			body, err := optionalBody(cmd, data)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Station().Add(cmdContext(cmd), id, key, body)
			if err != nil {
				return fmt.Errorf("failed to add station %s: %w", id, err)
			}
			return printMutation(cmd, resp, "Added", "station", id)
		}),
	}

	addDataFlag(cmd, &data, false)
	return cmd
}

func newStationRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <station> <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a station from your account",
		Example: strings.TrimSpace(`
  fieldclimate station remove 00000146 ABCD1234 --force
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			key, err := segmentArg(args[1], "station key")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              fmt.Sprintf("Remove station %s from your account? (y/N): ", id),
				CancelMessage:       "Cancelled.",
				Force:               force,
				RequireForceForJSON: true,
			})
			if err != nil || !ok {
				return err
			}
			resp, err := client.Station().Remove(cmdContext(cmd), id, key)
			if err != nil {
				return fmt.Errorf("failed to remove station %s: %w", id, err)
			}
			return printMutation(cmd, resp, "Removed", "station", id)
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	flagAlias(cmd.Flags(), "force", "fc")
	return cmd
}

func newStationProximityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proximity <station> <radius>",
		Short: "Find stations near a station",
		Example: strings.TrimSpace(`
  fieldclimate station proximity 00000146 10km
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			radius, err := segmentArg(args[1], "radius")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Station().Proximity(cmdContext(cmd), id, radius)
			if err != nil {
				return fmt.Errorf("failed to find stations near %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No stations found")
		}),
	}
}

// rangeEnd returns to, or the current time when the range is open.
func rangeEnd(to int64) int64 {
	if to == 0 {
		return nowFunc().Truncate(time.Second).Unix()
	}
	return to
}

func newStationEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"ev"},
		Short:   "Read station events",
	}

	var lastSort string
	last := &cobra.Command{
		Use:   "last <station> <amount>",
		Short: "Read the most recent events",
		Example: strings.TrimSpace(`
  fieldclimate station events last 00000146 10 --sort desc
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1], "amount")
			if err != nil {
				return err
			}
			sort, err := optionalEnum("sort", lastSort, sortOrders)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Station().LastEvents(cmdContext(cmd), id, amount, sort)
			if err != nil {
				return fmt.Errorf("failed to read events of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No events found")
		}),
	}
	last.Flags().StringVar(&lastSort, "sort", "", "Sort order: asc|desc")

	var from, to, betweenSort string
	between := &cobra.Command{
		Use:   "between <station>",
		Short: "Read events in a time range",
		Example: strings.TrimSpace(`
  fieldclimate station events between 00000146 --from 7d --to now
  fieldclimate station events between 00000146 --from 1491004800 --to 1491091200 --sort asc
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, toTS, err := parseRange(from, to)
			if err != nil {
				return err
			}
			sort, err := optionalEnum("sort", betweenSort, sortOrders)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Station().EventsBetween(cmdContext(cmd), id, fromTS, rangeEnd(toTS), sort)
			if err != nil {
				return fmt.Errorf("failed to read events of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No events found")
		}),
	}
	addRangeFlags(between, &from, &to)
	between.Flags().StringVar(&betweenSort, "sort", "", "Sort order: asc|desc")

	cmd.AddCommand(last, between)
	return cmd
}

func newStationHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Read station transmission history",
	}

	var lastFilter, lastSort string
	last := &cobra.Command{
		Use:   "last <station> <amount>",
		Short: "Read the most recent history entries",
		Example: strings.TrimSpace(`
  fieldclimate station history last 00000146 20
  fieldclimate station history last 00000146 20 --filter resets --sort desc
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1], "amount")
			if err != nil {
				return err
			}
			filter, err := optionalSegment(lastFilter, "filter")
			if err != nil {
				return err
			}
			sort, err := optionalEnum("sort", lastSort, sortOrders)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Station().HistoryLast(cmdContext(cmd), id, amount, filter, sort)
			if err != nil {
				return fmt.Errorf("failed to read history of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No history found")
		}),
	}
	last.Flags().StringVar(&lastFilter, "filter", "", "History filter (route segment before last)")
	last.Flags().StringVar(&lastSort, "sort", "", "Sort order: asc|desc")

	var from, to, betweenFilter, betweenSort string
	between := &cobra.Command{
		Use:   "between <station>",
		Short: "Read history entries in a time range",
		Example: strings.TrimSpace(`
  fieldclimate station history between 00000146 --from 2d --filter resets
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, toTS, err := parseRange(from, to)
			if err != nil {
				return err
			}
			filter, err := optionalSegment(betweenFilter, "filter")
			if err != nil {
				return err
			}
			sort, err := optionalEnum("sort", betweenSort, sortOrders)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Station().HistoryBetween(cmdContext(cmd), id, fromTS, rangeEnd(toTS), filter, sort)
			if err != nil {
				return fmt.Errorf("failed to read history of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No history found")
		}),
	}
	addRangeFlags(between, &from, &to)
	between.Flags().StringVar(&betweenFilter, "filter", "", "History filter (route segment before from)")
	between.Flags().StringVar(&betweenSort, "sort", "", "Sort order: asc|desc")

	cmd.AddCommand(last, between)
	return cmd
}

// addRangeFlags registers --from (required) and --to.
func addRangeFlags(cmd *cobra.Command, from, to *string) {
	cmd.Flags().StringVar(from, "from", "", "Start: unix seconds, RFC3339, YYYY-MM-DD, \"2d\", \"3 days ago\" (required)")
	cmd.Flags().StringVar(to, "to", "", "End, same formats as --from (default open-ended)")
	_ = cmd.MarkFlagRequired("from")
	flagAlias(cmd.Flags(), "from", "fr")
}
