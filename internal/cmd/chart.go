package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
)

var chartTypes = []string{api.ChartImages, api.ChartHighcharts}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render station data as charts",
		Long:  "Request chart images or Highcharts definitions for station data. Groups and periods are the same as for data.",
	}

	cmd.AddCommand(newChartLastCmd())
	cmd.AddCommand(newChartBetweenCmd())

	return cmd
}

type chartOptions struct {
	chartType string
	data      string
}

func (o *chartOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.chartType, "type", "", "Chart type: images|highcharts")
	addDataFlag(cmd, &o.data, false)
}

func (o *chartOptions) resolve(cmd *cobra.Command, group string) (string, string, any, error) {
	g, err := normalizeEnum("group", group, dataGroups)
	if err != nil {
		return "", "", nil, err
	}
	chartType, err := optionalEnum("type", o.chartType, chartTypes)
	if err != nil {
		return "", "", nil, err
	}
	body, err := optionalBody(cmd, o.data)
	if err != nil {
		return "", "", nil, err
	}
	return g, chartType, body, nil
}

func newChartLastCmd() *cobra.Command {
	var opts chartOptions

	cmd := &cobra.Command{
		Use:   "last <station> <group> <period>",
		Short: "Chart the most recent period of data",
		Example: strings.TrimSpace(`
  fieldclimate chart last 00000146 hourly 7d
  fieldclimate chart last 00000146 daily 30d --type highcharts
`),
		Args: cobra.ExactArgs(3),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			period, err := segmentArg(args[2], "period")
			if err != nil {
				return err
			}
			group, chartType, body, err := opts.resolve(cmd, args[1])
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *api.Response
			if body != nil {
				resp, err = client.Chart().LastCustom(cmdContext(cmd), id, group, period, chartType, body)
			} else {
				resp, err = client.Chart().Last(cmdContext(cmd), id, group, period, chartType)
			}
			if err != nil {
				return fmt.Errorf("failed to chart data of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No chart returned")
		}),
	}

	opts.register(cmd)
	return cmd
}

func newChartBetweenCmd() *cobra.Command {
	var opts chartOptions
	var from, to string

	cmd := &cobra.Command{
		Use:   "between <station> <group>",
		Short: "Chart data in a time range",
		Example: strings.TrimSpace(`
  fieldclimate chart between 00000146 hourly --from 2024-05-01 --to 2024-05-08 --type images
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, toTS, err := parseRange(from, to)
			if err != nil {
				return err
			}
			group, chartType, body, err := opts.resolve(cmd, args[1])
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *api.Response
			if body != nil {
				resp, err = client.Chart().BetweenCustom(cmdContext(cmd), id, group, fromTS, toTS, chartType, body)
			} else {
				resp, err = client.Chart().Between(cmdContext(cmd), id, group, fromTS, toTS, chartType)
			}
			if err != nil {
				return fmt.Errorf("failed to chart data of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No chart returned")
		}),
	}

	addRangeFlags(cmd, &from, &to)
	opts.register(cmd)
	return cmd
}
