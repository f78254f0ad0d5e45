package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/export"
)

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "forecast",
		Aliases: []string{"fc"},
		Short:   "Read weather forecasts for a station",
		Long:    "Read forecast data and forecast images. The option selects the product, for example general7 or pictoprint.",
	}

	cmd.AddCommand(newForecastDataCmd())
	cmd.AddCommand(newForecastImageCmd())

	return cmd
}

func newForecastDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "data <station> <option>",
		Short: "Read forecast data",
		Example: strings.TrimSpace(`
  fieldclimate forecast data 00000146 general7
  fieldclimate forecast data 00000146 basic-1h -o csv
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			option, err := segmentArg(args[1], "forecast option")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Forecast().Data(cmdContext(cmd), id, option)
			if err != nil {
				return fmt.Errorf("failed to read forecast of station %s: %w", id, err)
			}
			if isCSV(cmd) {
				return printCSVObject(cmd, resp, export.WriteForecast)
			}
			return printResponse(cmd, resp, "No forecast returned")
		}),
	}
}

func newForecastImageCmd() *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "image <station> <option>",
		Short: "Read a forecast image",
		Example: strings.TrimSpace(`
  fieldclimate forecast image 00000146 meteogram
  fieldclimate forecast image 00000146 meteogram --save meteogram.json
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			option, err := segmentArg(args[1], "forecast option")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Forecast().Image(cmdContext(cmd), id, option)
			if err != nil {
				return fmt.Errorf("failed to read forecast image of station %s: %w", id, err)
			}
			if save != "" {
				if err := os.WriteFile(save, resp.Raw, 0o600); err != nil {
					return fmt.Errorf("failed to save forecast image: %w", err)
				}
				printIfNotQuiet(cmd, "Saved %d bytes to %s\n", len(resp.Raw), save)
				return nil
			}
			return printResponse(cmd, resp, "No forecast image returned")
		}),
	}

	cmd.Flags().StringVar(&save, "save", "", "Write the response body to a file as received")
	return cmd
}
