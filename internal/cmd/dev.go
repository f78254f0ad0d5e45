package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dev",
		Aliases: []string{"app"},
		Short:   "Manage developer applications and their users",
		Long:    "Commands for registered developer applications: list users and stations, register and activate users, reset passwords.",
	}

	cmd.AddCommand(newDevApplicationsCmd())
	cmd.AddCommand(newDevListCmd("users <app>", "List users of an application", "No users found", "application users"))
	cmd.AddCommand(newDevListCmd("stations <app>", "List stations of an application", "No stations found", "application stations"))
	cmd.AddCommand(newDevListCmd("user-stations <user>", "List stations of an application user", "No stations found", "user stations"))
	cmd.AddCommand(newDevAddStationCmd())
	cmd.AddCommand(newDevRemoveStationCmd())
	cmd.AddCommand(newDevRegisterCmd())
	cmd.AddCommand(newDevActivateCmd())
	cmd.AddCommand(newDevPasswordResetCmd())
	cmd.AddCommand(newDevPasswordUpdateCmd())

	return cmd
}

func newDevApplicationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "List your applications",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Dev().Applications(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list applications: %w", err)
			}
			return printResponse(cmd, resp, "No applications found")
		}),
	}
}

// newDevListCmd builds the single-argument dev listings.
func newDevListCmd(use, short, empty, what string) *cobra.Command {
	name := strings.Fields(use)[0]
	field := "application ID"
	if name == "user-stations" {
		field = "user ID"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			arg, err := segmentArg(args[0], field)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}

			dev := client.Dev()
			ctx := cmdContext(cmd)
			var fetch = dev.ApplicationUsers
			switch name {
			case "stations":
				fetch = dev.ApplicationStations
			case "user-stations":
				fetch = dev.UserStations
			}

			resp, err := fetch(ctx, arg)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", what, err)
			}
			return printResponse(cmd, resp, empty)
		}),
	}
}

func newDevAddStationCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "add-station <user> <station> <key>",
		Short: "Add a station to an application user",
		Example: strings.TrimSpace(`
  fieldclimate dev add-station grower1 00000146 ABCD1234
`),
		Args: cobra.ExactArgs(3),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			user, err := segmentArg(args[0], "username")
			if err != nil {
				return err
			}
			station, err := segmentArg(args[1], "station ID")
			if err != nil {
				return err
			}
			key, err := segmentArg(args[2], "station key")
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
			resp, err := client.Dev().AddStationToUser(cmdContext(cmd), user, station, key, body)
			if err != nil {
				return fmt.Errorf("failed to add station %s to %s: %w", station, user, err)
			}
			return printMutation(cmd, resp, "Added", "station", station+" to "+user)
		}),
	}

	addDataFlag(cmd, &data, false)
	return cmd
}

func newDevRemoveStationCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove-station <user> <station>",
		Short: "Remove a station from an application user",
		Args:  cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			user, err := segmentArg(args[0], "username")
			if err != nil {
				return err
			}
			station, err := segmentArg(args[1], "station ID")
			if err != nil {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              fmt.Sprintf("Remove station %s from %s? (y/N): ", station, user),
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
			resp, err := client.Dev().RemoveStationFromUser(cmdContext(cmd), user, station)
			if err != nil {
				return fmt.Errorf("failed to remove station %s from %s: %w", station, user, err)
			}
			return printMutation(cmd, resp, "Removed", "station", station+" from "+user)
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	flagAlias(cmd.Flags(), "force", "fc")
	return cmd
}

func newDevRegisterCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "register <app>",
		Short: "Register a new user to an application",
		Example: strings.TrimSpace(`
  fieldclimate dev register 5a1b2c --data @user.json
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			app, err := segmentArg(args[0], "application ID")
			if err != nil {
				return err
			}
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Dev().RegisterUser(cmdContext(cmd), app, body)
			if err != nil {
				return fmt.Errorf("failed to register user: %w", err)
			}
			return printMutation(cmd, resp, "Registered", "user in application", app)
		}),
	}

	addDataFlag(cmd, &data, true)
	return cmd
}

func newDevActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <key>",
		Short: "Activate a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			key, err := segmentArg(args[0], "activation key")
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Dev().ActivateUser(cmdContext(cmd), key)
			if err != nil {
				return fmt.Errorf("failed to activate user: %w", err)
			}
			return printMutation(cmd, resp, "Activated", "user", "")
		}),
	}
}

func newDevPasswordResetCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "password-reset <app>",
		Short: "Start a password reset for an application user",
		Example: strings.TrimSpace(`
  fieldclimate dev password-reset 5a1b2c --data '{"email":"grower@example.com"}'
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			app, err := segmentArg(args[0], "application ID")
			if err != nil {
				return err
			}
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Dev().PasswordReset(cmdContext(cmd), app, body)
			if err != nil {
				return fmt.Errorf("failed to reset password: %w", err)
			}
			return printMutation(cmd, resp, "Requested", "password reset in application", app)
		}),
	}

	addDataFlag(cmd, &data, true)
	return cmd
}

func newDevPasswordUpdateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "password-update <app> <key>",
		Short: "Set a new password with a reset key",
		Example: strings.TrimSpace(`
  fieldclimate dev password-update 5a1b2c RESETKEY --data '{"password":"..."}'
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			app, err := segmentArg(args[0], "application ID")
			if err != nil {
				return err
			}
			key, err := segmentArg(args[1], "password key")
			if err != nil {
				return err
			}
			body, err := readBody(cmd, data)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Dev().PasswordUpdate(cmdContext(cmd), app, key, body)
			if err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}
			return printMutation(cmd, resp, "Updated", "password in application", app)
		}),
	}

	addDataFlag(cmd, &data, true)
	return cmd
}
