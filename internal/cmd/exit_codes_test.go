package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/config"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"auth", &api.AuthError{Reason: "token endpoint rejected the code"}, exitAuth},
		{"unauthorized", &api.APIError{StatusCode: 401}, exitAuth},
		{"not found", &api.APIError{StatusCode: 404}, exitNotFound},
		{"forbidden", &api.APIError{StatusCode: 403}, exitForbidden},
		{"server", &api.APIError{StatusCode: 500, Raw: []byte("oops")}, exitServer},
		{"bad request", &api.APIError{StatusCode: 400}, exitUsage},
		{"conflict", &api.APIError{StatusCode: 409}, exitUsage},
		{"timeout", fmt.Errorf("request failed: %w", context.DeadlineExceeded), exitNetwork},
		{"not configured", config.ErrNotConfigured, exitAuth},
		{"invalid credentials", &config.ValidationError{Problems: []string{"public_key is required"}}, exitUsage},
		{"usage", errors.New("unknown command \"nope\""), exitUsage},
		{"usage shorthand", errors.New("unknown shorthand flag: 'a' in -a"), exitUsage},
		{"network", errors.New("dial tcp: connection refused"), exitNetwork},
		{"generic", errors.New("boom"), exitGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.code {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.code)
			}
		})
	}
}

func TestExitCode_HandledErrorUsesStoredCode(t *testing.T) {
	err := &handledError{err: errors.New("wrapped"), exitCode: exitNotFound}
	if got := ExitCode(err); got != exitNotFound {
		t.Fatalf("ExitCode(handled) = %d, want %d", got, exitNotFound)
	}
}

func TestExitCode_HandledErrorFallsBackToWrapped(t *testing.T) {
	err := &handledError{err: &api.APIError{StatusCode: 403}}
	if got := ExitCode(err); got != exitForbidden {
		t.Fatalf("ExitCode(handled) = %d, want %d", got, exitForbidden)
	}
}
