package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/export"
)

func newDiseaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "disease",
		Aliases: []string{"dis"},
		Short:   "Run disease models and read evapotranspiration",
		Long: strings.TrimSpace(`
Read evapotranspiration (ETo) and run disease risk models on station data.

Disease models take a body naming the model, for example
  {"name": "GeneralDiseaseModels/BlightModel"}
"fieldclimate system diseases" lists the available models.`),
	}

	eto := &cobra.Command{
		Use:   "eto",
		Short: "Read evapotranspiration",
	}
	eto.AddCommand(newDiseaseEtoLastCmd(), newDiseaseEtoBetweenCmd())

	cmd.AddCommand(eto)
	cmd.AddCommand(newDiseaseLastCmd())
	cmd.AddCommand(newDiseaseBetweenCmd())

	return cmd
}

func printEto(cmd *cobra.Command, resp *api.Response) error {
	if isCSV(cmd) {
		return printCSVList(cmd, resp, export.WriteEto)
	}
	return printResponse(cmd, resp, "No evapotranspiration data found")
}

func printDisease(cmd *cobra.Command, resp *api.Response) error {
	if isCSV(cmd) {
		return printCSVList(cmd, resp, export.WriteDisease)
	}
	return printResponse(cmd, resp, "No disease model results")
}

func newDiseaseEtoLastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last <station> <period>",
		Short: "Read the most recent evapotranspiration values",
		Example: strings.TrimSpace(`
  fieldclimate disease eto last 00000146 7d
  fieldclimate disease eto last 00000146 30d -o csv
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			period, err := segmentArg(args[1], "period")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Disease().LastEto(cmdContext(cmd), id, period)
			if err != nil {
				return fmt.Errorf("failed to read evapotranspiration of station %s: %w", id, err)
			}
			return printEto(cmd, resp)
		}),
	}
}

func newDiseaseEtoBetweenCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "between <station>",
		Short: "Read evapotranspiration in a time range",
		Example: strings.TrimSpace(`
  fieldclimate disease eto between 00000146 --from 2024-05-01 --to 2024-06-01
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, toTS, err := parseRange(from, to)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Disease().EtoBetween(cmdContext(cmd), id, fromTS, toTS)
			if err != nil {
				return fmt.Errorf("failed to read evapotranspiration of station %s: %w", id, err)
			}
			return printEto(cmd, resp)
		}),
	}

	addRangeFlags(cmd, &from, &to)
	return cmd
}

func newDiseaseLastCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "last <station> <period>",
		Short: "Run a disease model over the most recent period",
		Example: strings.TrimSpace(`
  fieldclimate disease last 00000146 7d --data '{"name":"GeneralDiseaseModels/BlightModel"}'
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			period, err := segmentArg(args[1], "period")
			if err != nil {
				return err
			}
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Disease().Last(cmdContext(cmd), id, period, body)
			if err != nil {
				return fmt.Errorf("failed to run disease model for station %s: %w", id, err)
			}
			return printDisease(cmd, resp)
		}),
	}

	addDataFlag(cmd, &data, true)
	return cmd
}

func newDiseaseBetweenCmd() *cobra.Command {
	var data, from, to string

	cmd := &cobra.Command{
		Use:   "between <station>",
		Short: "Run a disease model over a time range",
		Example: strings.TrimSpace(`
  fieldclimate disease between 00000146 --from 14d --data @model.json -o csv
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, toTS, err := parseRange(from, to)
			if err != nil {
				return err
			}
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Disease().Between(cmdContext(cmd), id, fromTS, toTS, body)
			if err != nil {
				return fmt.Errorf("failed to run disease model for station %s: %w", id, err)
			}
			return printDisease(cmd, resp)
		}),
	}

	addRangeFlags(cmd, &from, &to)
	addDataFlag(cmd, &data, true)
	return cmd
}
