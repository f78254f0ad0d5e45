package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var authErr *api.AuthError
	var credErr *config.ValidationError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No FieldClimate credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: fieldclimate auth login --public-key <key> --private-key <key>\n")
		fmt.Fprintf(&msg, "  - Or export %s and %s\n", config.EnvHMACPublicKey, config.EnvHMACPrivateKey)

	case errors.As(err, &credErr):
		msg.WriteString("Invalid credentials configuration:\n")
		for _, problem := range credErr.Problems {
			fmt.Fprintf(&msg, "  - %s\n", problem)
		}
		msg.WriteString("\nRun 'fieldclimate auth status' to see where credentials come from.\n")

	case errors.As(err, &authErr):
		fmt.Fprintf(&msg, "Authentication failed: %s\n\n", authErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the OAuth2 client id and secret\n")
		msg.WriteString("  - Authorization codes are single-use; request a new one\n")
		msg.WriteString("  - Or switch to HMAC keys with --auth hmac\n")

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, apiErr.Message())
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		fmt.Fprintf(&msg, "  - Check %s if you point the CLI at a non-default server\n", config.EnvBaseURL)
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL spelling: fieldclimate auth status\n")
		msg.WriteString("  - Verify your DNS settings\n")

	case strings.Contains(err.Error(), "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's SSL certificate\n")
		msg.WriteString("  - Ensure you're using https:// correctly\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case 401:
		suggestions.WriteString("  - Your HMAC keys may be wrong or revoked\n")
		suggestions.WriteString("  - Check that the system clock is correct; signatures carry the date\n")
		suggestions.WriteString("  - Run: fieldclimate auth login\n")

	case 403:
		suggestions.WriteString("  - The station or resource is not shared with your account\n")
		suggestions.WriteString("  - Check your rights: fieldclimate user stations\n")

	case 404:
		suggestions.WriteString("  - The station or resource doesn't exist\n")
		suggestions.WriteString("  - Check the station ID is correct\n")

	case 409:
		suggestions.WriteString("  - The resource already exists or changed\n")
		suggestions.WriteString("  - Refresh and retry\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
		suggestions.WriteString("  - Check the FieldClimate API documentation\n")
	}

	return suggestions.String()
}

// ExitWithError prints error with suggestions and exits
func ExitWithError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(os.Stderr, HandleError(err))
	os.Exit(ExitCode(err))
}
