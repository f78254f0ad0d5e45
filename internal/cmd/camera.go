package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCameraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "camera",
		Aliases: []string{"cam"},
		Short:   "List camera station photos",
		Long:    "List photos taken by camera stations (iScout, CropVIEW). --camera selects one camera on stations with several.",
	}

	cmd.AddCommand(newCameraRangeCmd())
	cmd.AddCommand(newCameraLastCmd())
	cmd.AddCommand(newCameraBetweenCmd())

	return cmd
}

func newCameraRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range <station>",
		Short: "Show the first and last photo dates",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Camera().Range(cmdContext(cmd), id)
			if err != nil {
				return fmt.Errorf("failed to get photo range of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No photos found")
		}),
	}
}

func newCameraLastCmd() *cobra.Command {
	var camera string

	cmd := &cobra.Command{
		Use:   "last <station> <amount>",
		Short: "List the most recent photos",
		Example: strings.TrimSpace(`
  fieldclimate camera last 00000146 5
  fieldclimate camera last 00000146 5 --camera 1
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1], "amount")
			if err != nil {
				return err
			}
			cam, err := optionalSegment(camera, "camera")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Camera().Last(cmdContext(cmd), id, amount, cam)
			if err != nil {
				return fmt.Errorf("failed to list photos of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No photos found")
		}),
	}

	cmd.Flags().StringVar(&camera, "camera", "", "Camera number on multi-camera stations")
	return cmd
}

func newCameraBetweenCmd() *cobra.Command {
	var camera, from, to string

	cmd := &cobra.Command{
		Use:   "between <station>",
		Short: "List photos in a time range",
		Long:  "List photos in a time range. Both --from and --to are optional.",
		Example: strings.TrimSpace(`
  fieldclimate camera between 00000146 --from 7d
  fieldclimate camera between 00000146 --from 2024-05-01 --to 2024-05-02 --camera 2
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			fromTS, err := parseOptionalTimestamp("from", from)
			if err != nil {
				return err
			}
			toTS, err := parseOptionalTimestamp("to", to)
			if err != nil {
				return err
			}
			if fromTS != 0 && toTS != 0 && toTS < fromTS {
				return fmt.Errorf("--to must not be before --from")
			}
			cam, err := optionalSegment(camera, "camera")
			if err != nil {
				return err
			}
			client, id, err := stationArg(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := client.Camera().Between(cmdContext(cmd), id, fromTS, toTS, cam)
			if err != nil {
				return fmt.Errorf("failed to list photos of station %s: %w", id, err)
			}
			return printResponse(cmd, resp, "No photos found")
		}),
	}

	cmd.Flags().StringVar(&from, "from", "", "Start time (optional)")
	cmd.Flags().StringVar(&to, "to", "", "End time (optional)")
	cmd.Flags().StringVar(&camera, "camera", "", "Camera number on multi-camera stations")
	return cmd
}
