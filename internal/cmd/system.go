package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/export"
)

func newSystemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "system",
		Aliases: []string{"sys"},
		Short:   "Query system-wide reference data",
		Long:    "Read API status and the catalogues shared by all stations: sensors, groups, device types, countries, time zones and disease models.",
	}

	cmd.AddCommand(newSystemStatusCmd())
	cmd.AddCommand(newSystemSensorsCmd())
	cmd.AddCommand(newSystemRefCmd("groups", "List sensor groups", "No sensor groups found",
		func(ctx context.Context, c *api.Client) (*api.Response, error) { return c.System().SensorGroups(ctx) }))
	cmd.AddCommand(newSystemRefCmd("group-sensors", "List sensor groups with their sensors", "No sensor groups found",
		func(ctx context.Context, c *api.Client) (*api.Response, error) { return c.System().GroupSensors(ctx) }))
	cmd.AddCommand(newSystemRefCmd("types", "List device types", "No device types found",
		func(ctx context.Context, c *api.Client) (*api.Response, error) { return c.System().Types(ctx) }))
	cmd.AddCommand(newSystemRefCmd("countries", "List supported countries", "No countries found",
		func(ctx context.Context, c *api.Client) (*api.Response, error) { return c.System().Countries(ctx) }))
	cmd.AddCommand(newSystemRefCmd("timezones", "List supported time zones", "No time zones found",
		func(ctx context.Context, c *api.Client) (*api.Response, error) { return c.System().Timezones(ctx) }))
	cmd.AddCommand(newSystemRefCmd("diseases", "List available disease models", "No disease models found",
		func(ctx context.Context, c *api.Client) (*api.Response, error) { return c.System().Diseases(ctx) }))

	return cmd
}

func newSystemStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check API status",
		Example: strings.TrimSpace(`
  fieldclimate system status
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.System().Status(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to get system status: %w", err)
			}
			return printResponse(cmd, resp, "No status returned")
		}),
	}
}

func newSystemSensorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sensors",
		Short: "List every sensor type the system supports",
		Example: strings.TrimSpace(`
  # Table of sensors
  fieldclimate system sensors

  # CSV export
  fieldclimate system sensors -o csv > sensors.csv
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.System().Sensors(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list sensors: %w", err)
			}
			return printSensors(cmd, result)
		}),
	}
}

// printSensors renders system and station sensor lists.
func printSensors(cmd *cobra.Command, result *api.Result[[]api.Sensor]) error {
	if isCSV(cmd) {
		return printCSVList(cmd, result.Response, export.WriteSensors)
	}
	f := newFormatter(cmd)
	if f.Structured() {
		return f.Output(result.Body)
	}
	if len(result.Payload) == 0 {
		f.Empty("No sensors found")
		return nil
	}

	f.StartTable([]string{"CODE", "CH", "NAME", "UNIT", "GROUP"})
	for _, s := range result.Payload {
		name := s.Name
		if s.NameCustom != "" {
			name = s.NameCustom
		}
		ch := ""
		if s.Ch != 0 {
			ch = strconv.Itoa(s.Ch)
		}
		f.Row(strconv.Itoa(s.Code), ch, name, s.Unit, strconv.Itoa(s.Group))
	}
	return f.EndTable()
}

// newSystemRefCmd builds one of the read-only catalogue commands.
func newSystemRefCmd(use, short, empty string, fetch func(context.Context, *api.Client) (*api.Response, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := fetch(cmdContext(cmd), client)
			if err != nil {
				return fmt.Errorf("failed to get system %s: %w", use, err)
			}
			return printResponse(cmd, resp, empty)
		}),
	}
}
