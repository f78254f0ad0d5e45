package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/export"
)

var (
	dataGroups  = []string{"raw", "hourly", "daily", "monthly"}
	dataFormats = []string{api.FormatNormal, api.FormatOptimized}
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "data",
		Aliases: []string{"d"},
		Short:   "Read station measurements",
		Long: strings.TrimSpace(`
Read measurements of a station grouped as raw, hourly, daily or monthly values.

Periods are what the API accepts after "last", for example 24, 7d, 2w or 1m.
--data posts a customization body (sensor selection, units) with the request.`),
	}

	cmd.AddCommand(newDataRangeCmd())
	cmd.AddCommand(newDataLastCmd())
	cmd.AddCommand(newDataBetweenCmd())

	return cmd
}

func newDataRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range <station>",
		Short: "Show the first and last date with data",
		Example: strings.TrimSpace(`
  fieldclimate data range 00000146
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Data().Range(cmdContext(cmd), id)
			if err != nil {
				return fmt.Errorf("failed to get data range of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No data found")
		}),
	}
}

// dataOptions are the group and format shared by data last and between.
type dataOptions struct {
	format string
	data   string
}

func (o *dataOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "", "Data format: normal|optimized (csv output implies normal)")
	addDataFlag(cmd, &o.data, false)
}

func (o *dataOptions) resolve(cmd *cobra.Command, group string) (string, string, any, error) {
	g, err := normalizeEnum("group", group, dataGroups)
	if err != nil {
		return "", "", nil, err
	}
	format, err := optionalEnum("format", o.format, dataFormats)
	if err != nil {
		return "", "", nil, err
	}
	if isCSV(cmd) {
		if format == api.FormatOptimized {
			return "", "", nil, fmt.Errorf("--output csv needs --format normal")
		}
		format = api.FormatNormal
	}
	body, err := optionalBody(cmd, o.data)
	if err != nil {
		return "", "", nil, err
	}
	return g, format, body, nil
}

func printData(cmd *cobra.Command, resp *api.Response) error {
	if isCSV(cmd) {
		return printCSVObject(cmd, resp, export.WriteData)
	}
	return printResponse(cmd, resp, "No data found")
}

func newDataLastCmd() *cobra.Command {
	var opts dataOptions

	cmd := &cobra.Command{
		Use:   "last <station> <group> <period>",
		Short: "Read the most recent period of data",
		Example: strings.TrimSpace(`
  # Hourly values of the last 7 days
  fieldclimate data last 00000146 hourly 7d

  # One row per measurement
  fieldclimate data last 00000146 daily 30d -o csv

  # Optimized format with a sensor selection
  fieldclimate data last 00000146 hourly 24 --format optimized --data @sensors.json
`),
		Args: cobra.ExactArgs(3),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			period, err := segmentArg(args[2], "period")
			if err != nil {
				return err
			}
			group, format, body, err := opts.resolve(cmd, args[1])
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *api.Response
			if body != nil {
				resp, err = client.Data().LastCustom(cmdContext(cmd), id, group, period, format, body)
			} else {
				resp, err = client.Data().Last(cmdContext(cmd), id, group, period, format)
			}
			if err != nil {
				return fmt.Errorf("failed to read data of station %s: %w", id, err)
			}
			return printData(cmd, resp)
		}),
	}

	opts.register(cmd)
	return cmd
}

func newDataBetweenCmd() *cobra.Command {
	var opts dataOptions
	var from, to string

	cmd := &cobra.Command{
		Use:   "between <station> <group>",
		Short: "Read data in a time range",
		Example: strings.TrimSpace(`
  fieldclimate data between 00000146 hourly --from 2024-05-01 --to 2024-05-08
  fieldclimate data between 00000146 raw --from "6h ago"
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, toTS, err := parseRange(from, to)
			if err != nil {
				return err
			}
			group, format, body, err := opts.resolve(cmd, args[1])
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *api.Response
			if body != nil {
				resp, err = client.Data().BetweenCustom(cmdContext(cmd), id, group, fromTS, toTS, format, body)
			} else {
				resp, err = client.Data().Between(cmdContext(cmd), id, group, fromTS, toTS, format)
			}
			if err != nil {
				return fmt.Errorf("failed to read data of station %s: %w", id, err)
			}
			return printData(cmd, resp)
		}),
	}

	addRangeFlags(cmd, &from, &to)
	opts.register(cmd)
	return cmd
}
