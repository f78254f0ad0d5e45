package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/config"
	"github.com/fieldclimate/fieldclimate-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Configure and manage FieldClimate API credentials stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		publicKey    string
		privateKey   string
		clientID     string
		clientSecret string
		method       string
		baseURL      string
		envFile      string
		allowPrivate bool
		verify       bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save API credentials",
		Long: strings.TrimSpace(`
Save FieldClimate API credentials securely to your OS keychain.

Two authentication methods are supported:
- hmac:   a public/private key pair from the FieldClimate user settings
- oauth2: a client ID and secret of a registered application. The first
          request opens a browser to authorize the application; access
          tokens are kept in memory only.

Use --profile (global flag) to keep several accounts side by side.
`),
		Example: strings.TrimSpace(`
  # HMAC key pair
  fieldclimate auth login --public-key PUBLIC --private-key PRIVATE

  # OAuth2 application under a named profile
  fieldclimate auth login --client-id ID --client-secret SECRET --profile lab

  # Load FIELDCLIMATE_* values from a .env file and check them against the API
  fieldclimate auth login --env-file .env --verify
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var creds config.Credentials
			if envFile != "" {
				fromFile, err := config.ReadEnvFile(strings.TrimSpace(envFile))
				if err != nil {
					return err
				}
				creds = fromFile
			}
			creds = creds.Merge(config.Credentials{
				AuthMethod:   strings.ToLower(strings.TrimSpace(method)),
				BaseURL:      strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
				PublicKey:    strings.TrimSpace(publicKey),
				PrivateKey:   strings.TrimSpace(privateKey),
				ClientID:     strings.TrimSpace(clientID),
				ClientSecret: strings.TrimSpace(clientSecret),
			})
			if creds.IsZero() {
				return fmt.Errorf("no credentials given: use --public-key/--private-key, --client-id/--client-secret, or --env-file")
			}

			if creds.BaseURL != "" {
				validation.SetAllowPrivate(allowPrivate || validation.AllowPrivateEnabled())
				if err := validation.ValidateBaseURL(creds.BaseURL); err != nil {
					return fmt.Errorf("invalid base URL: %w", err)
				}
			}

			profile := flags.Profile
			if profile == "" {
				profile = "default"
			}
			if err := config.SaveProfile(profile, creds); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			creds.InferAuthMethod()

			if verify {
				f := newClientFactory(cmd)
				f.profile = profile
				f.auth = ""
				client, err := f.client()
				if err != nil {
					return err
				}
				if _, err := client.User().Info(cmdContext(cmd)); err != nil {
					return fmt.Errorf("credentials saved but verification failed: %w", err)
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, authSummary(creds, profile, "keychain", verify))
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authentication credentials saved successfully!")
			_, _ = fmt.Fprintf(out, "  Method: %s\n", creds.AuthMethod)
			if creds.BaseURL != "" {
				_, _ = fmt.Fprintf(out, "  Base URL: %s\n", creds.BaseURL)
			}
			if profile != "default" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			if verify {
				_, _ = fmt.Fprintln(out, "  Verified: yes")
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&publicKey, "public-key", "", "HMAC public key")
	cmd.Flags().StringVar(&privateKey, "private-key", "", "HMAC private key")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&method, "method", "", "Authentication method: hmac|oauth2 (inferred from the keys given)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (default "+api.DefaultBaseURL+")")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load FIELDCLIMATE_* values from a .env file")
	cmd.Flags().BoolVar(&allowPrivate, "allow-private", false, "Allow private/localhost base URLs (env "+validation.EnvAllowPrivate+")")
	cmd.Flags().BoolVar(&verify, "verify", false, "Call GET user with the saved credentials")
	flagAlias(cmd.Flags(), "public-key", "pub")
	flagAlias(cmd.Flags(), "private-key", "priv")
	flagAlias(cmd.Flags(), "client-id", "cid")
	flagAlias(cmd.Flags(), "client-secret", "cs")
	flagAlias(cmd.Flags(), "base-url", "url")
	flagAlias(cmd.Flags(), "env-file", "env")
	flagAlias(cmd.Flags(), "allow-private", "ap")

	return cmd
}

func authSummary(creds config.Credentials, profile, source string, verified bool) map[string]any {
	payload := map[string]any{
		"authenticated": true,
		"auth_method":   creds.AuthMethod,
		"source":        source,
	}
	if profile != "" {
		payload["profile"] = profile
	}
	if creds.BaseURL != "" {
		payload["base_url"] = creds.BaseURL
	}
	switch creds.AuthMethod {
	case config.AuthHMAC:
		payload["public_key"] = maskToken(creds.PublicKey)
		payload["private_key"] = maskToken(creds.PrivateKey)
	case config.AuthOAuth2:
		payload["client_id"] = maskToken(creds.ClientID)
		payload["client_secret"] = maskToken(creds.ClientSecret)
	}
	if verified {
		payload["verified"] = true
	}
	return payload
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the credentials the next command would use (secrets are masked).",
		Example: strings.TrimSpace(`
  # Check authentication status
  fieldclimate auth status

  # JSON output for scripting
  fieldclimate auth status --json
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ResolveClientConfig(flags.Profile, flags.Auth)
			if errors.Is(err, config.ErrNotConfigured) {
				if isJSON(cmd) {
					return printJSON(cmd, map[string]any{
						"authenticated": false,
						"message":       "Not authenticated. Run 'fieldclimate auth login' to configure credentials.",
					})
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'fieldclimate auth login' to configure credentials.")
				return nil
			}
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, authSummary(cfg.Credentials, cfg.Profile, cfg.Source, false))
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  Method: %s\n", cfg.AuthMethod)
			baseURL := cfg.BaseURL
			if baseURL == "" {
				baseURL = api.DefaultBaseURL + " (default)"
			}
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", baseURL)
			switch cfg.AuthMethod {
			case config.AuthHMAC:
				_, _ = fmt.Fprintf(out, "  Public Key: %s\n", maskToken(cfg.PublicKey))
				_, _ = fmt.Fprintf(out, "  Private Key: %s\n", maskToken(cfg.PrivateKey))
			case config.AuthOAuth2:
				_, _ = fmt.Fprintf(out, "  Client ID: %s\n", maskToken(cfg.ClientID))
				_, _ = fmt.Fprintf(out, "  Client Secret: %s\n", maskToken(cfg.ClientSecret))
			}
			if cfg.Profile != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", cfg.Profile)
			}
			_, _ = fmt.Fprintf(out, "  Source: %s\n", cfg.Source)
			return nil
		}),
	}

	return cmd
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from keychain",
		Long:  "Delete the stored credentials of the current (or --profile) profile from your OS keychain.",
		Example: strings.TrimSpace(`
  # Remove the current profile
  fieldclimate auth logout

  # Remove a named profile
  fieldclimate auth logout --profile lab
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}

			if _, err := config.LoadProfile(profile); errors.Is(err, config.ErrNotConfigured) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
				return nil
			} else if err != nil {
				return err
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed successfully.\n", profile)
			return nil
		}),
	}

	return cmd
}

// maskToken masks a secret for display. Only secrets longer than eight
// characters keep their first and last four.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
