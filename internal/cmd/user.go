package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/export"
	"github.com/fieldclimate/fieldclimate-cli/internal/resolve"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"me", "u"},
		Short:   "Manage the authenticated account",
		Long:    "Read and change the account the credentials belong to, and list its stations and licenses.",
	}

	cmd.AddCommand(newUserInfoCmd())
	cmd.AddCommand(newUserUpdateCmd())
	cmd.AddCommand(newUserDeleteCmd())
	cmd.AddCommand(newUserStationsCmd())
	cmd.AddCommand(newUserLicensesCmd())

	return cmd
}

func newUserInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "info",
		Aliases: []string{"get", "show"},
		Short:   "Show account details",
		Example: strings.TrimSpace(`
  # Account details
  fieldclimate user info

  # CSV export
  fieldclimate user info -o csv
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.User().Info(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			if isCSV(cmd) {
				return printCSVList(cmd, result.Response, export.WriteUsers)
			}
			if f := newFormatter(cmd); f.Structured() {
				return f.Output(result.Body)
			}

			user := result.Payload
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "User %s\n", user.Username)
			name := strings.TrimSpace(user.Info.Name + " " + user.Info.Lastname)
			if name != "" {
				_, _ = fmt.Fprintf(out, "  Name:        %s\n", name)
			}
			if user.Info.Email != "" {
				_, _ = fmt.Fprintf(out, "  Email:       %s\n", user.Info.Email)
			}
			if user.Company.Name != "" {
				_, _ = fmt.Fprintf(out, "  Company:     %s\n", user.Company.Name)
			}
			if user.Address.Country != "" {
				_, _ = fmt.Fprintf(out, "  Country:     %s\n", user.Address.Country)
			}
			if user.Settings.Language != "" {
				_, _ = fmt.Fprintf(out, "  Language:    %s\n", user.Settings.Language)
			}
			if user.Settings.UnitSystem != "" {
				_, _ = fmt.Fprintf(out, "  Units:       %s\n", user.Settings.UnitSystem)
			}
			if user.LastAccess != "" {
				_, _ = fmt.Fprintf(out, "  Last access: %s\n", user.LastAccess)
			}
			return nil
		}),
	}
}

func newUserUpdateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update account details",
		Long:  "Send a partial user document. Only the fields present are changed.",
		Example: strings.TrimSpace(`
  # Change the interface language
  fieldclimate user update --data '{"settings":{"language":"de"}}'

  # Body from a file
  fieldclimate user update --data @user.json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}

			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.User().Update(cmdContext(cmd), body)
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			return printMutation(cmd, resp, "Updated", "user", "")
		}),
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body: inline, @file or - for stdin (required)")
	_ = cmd.MarkFlagRequired("data")
	flagAlias(cmd.Flags(), "data", "dt")

	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the authenticated account",
		Long:  "Permanently delete the account the credentials belong to.",
		Example: strings.TrimSpace(`
  # Prompt before deleting
  fieldclimate user delete

  # Skip the prompt
  fieldclimate user delete --force
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              "Delete your FieldClimate account? Type 'delete' to confirm: ",
				Expected:            "delete",
				CancelMessage:       "Cancelled.",
				Force:               force,
				RequireForceForJSON: true,
			})
			if err != nil || !ok {
				return err
			}

			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.User().Delete(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
			return printMutation(cmd, resp, "Deleted", "user", "")
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	flagAlias(cmd.Flags(), "force", "fc")

	return cmd
}

func newUserStationsCmd() *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:     "stations",
		Aliases: []string{"st", "ls"},
		Short:   "List stations on the account",
		Example: strings.TrimSpace(`
  # Table of stations
  fieldclimate user stations

  # Stations whose serial or name looks like "north", best match first
  fieldclimate user stations --match north

  # Serials only
  fieldclimate user stations --jq '.[].name.original'
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.User().Stations(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list stations: %w", err)
			}

			if isCSV(cmd) {
				return errCSVUnsupported
			}

			stations := result.Payload
			var body any = result.Body
			empty := "No stations found"
			if match = strings.TrimSpace(match); match != "" {
				var elems []json.RawMessage
				if err := json.Unmarshal(result.Body, &elems); err != nil || len(elems) != len(stations) {
					return fmt.Errorf("failed to filter stations: unexpected response shape")
				}
				order := matchStations(match, stations)
				filtered := make([]api.Station, len(order))
				picked := make([]json.RawMessage, len(order))
				for i, idx := range order {
					filtered[i], picked[i] = stations[idx], elems[idx]
				}
				stations, body = filtered, picked
				empty = fmt.Sprintf("No stations match %q", match)
			}

			f := newFormatter(cmd)
			if f.Structured() {
				return f.Output(body)
			}
			if len(stations) == 0 {
				f.Empty(empty)
				return nil
			}

			f.StartTable([]string{"ID", "NAME", "DEVICE", "LAST COMMUNICATION"})
			for _, st := range stations {
				f.Row(st.ID(), st.DisplayName(), st.Info.DeviceName, st.Dates.LastCommunication)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&match, "match", "", "Only stations whose serial or custom name fuzzy-matches this text, best first")
	flagAlias(cmd.Flags(), "match", "mt")

	return cmd
}

// matchStations returns the indexes of the stations matching query, best
// match first. A station matched by both serial and name appears once.
func matchStations(query string, stations []api.Station) []int {
	items := resolve.Stations(stations)
	index := make(map[string]int, len(stations))
	for i, st := range stations {
		if _, ok := index[st.ID()]; !ok {
			index[st.ID()] = i
		}
	}

	seen := make(map[string]bool)
	order := []int{}
	for _, m := range resolve.FuzzyMatchAll(query, items, len(items)) {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		order = append(order, index[m.ID])
	}
	return order
}

func newUserLicensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "licenses",
		Short: "List licenses held for each station",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.User().Licenses(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list licenses: %w", err)
			}
			return printResponse(cmd, resp, "No licenses found")
		}),
	}
}
