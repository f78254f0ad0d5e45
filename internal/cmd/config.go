package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigProfilesCmd())

	return cmd
}

func newConfigProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage credential profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesDeleteCmd())

	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured profiles",
		Example: "fieldclimate config profiles list",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"current":  current,
					"profiles": profiles,
				})
			}

			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured. Run 'fieldclimate auth login' to add one.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "CURRENT\tPROFILE\tMETHOD\tBASE_URL")
			for _, profile := range profiles {
				marker := ""
				if profile == current {
					marker = "*"
				}
				method, baseURL := "-", "-"
				if creds, err := config.LoadProfile(profile); err == nil {
					if creds.AuthMethod != "" {
						method = creds.AuthMethod
					}
					if creds.BaseURL != "" {
						baseURL = creds.BaseURL
					}
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, profile, method, baseURL)
			}

			return nil
		}),
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Switch active profile",
		Example: "fieldclimate config profiles use lab",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			creds, err := config.LoadProfile(name)
			if err != nil {
				return fmt.Errorf("profile %q not found: %w", name, err)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current profile: %s (%s)\n", name, creds.AuthMethod)
			return nil
		}),
	}
}

func newProfilesShowCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show profile details",
		Example: "fieldclimate config profiles show --name lab",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}

			creds, err := config.LoadProfile(name)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				payload := authSummary(creds, name, "keychain", false)
				delete(payload, "authenticated")
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Profile: %s\n", name)
			_, _ = fmt.Fprintf(out, "  Method: %s\n", creds.AuthMethod)
			if creds.BaseURL != "" {
				_, _ = fmt.Fprintf(out, "  Base URL: %s\n", creds.BaseURL)
			}
			if creds.PublicKey != "" {
				_, _ = fmt.Fprintf(out, "  Public Key: %s\n", maskToken(creds.PublicKey))
			}
			if creds.ClientID != "" {
				_, _ = fmt.Fprintf(out, "  Client ID: %s\n", maskToken(creds.ClientID))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (defaults to current)")
	flagAlias(cmd.Flags(), "name", "nm")

	return cmd
}

func newProfilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Example: "fieldclimate config profiles delete lab",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			printAction(cmd, "Deleted", "profile", name, "")
			return nil
		}),
	}
}
