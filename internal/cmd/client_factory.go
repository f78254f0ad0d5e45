package cmd

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/auth"
	"github.com/fieldclimate/fieldclimate-cli/internal/config"
	"github.com/fieldclimate/fieldclimate-cli/internal/dryrun"
	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
)

type clientFactory struct {
	cmd       *cobra.Command
	timeout   time.Duration
	userAgent string
	profile   string
	auth      string
	authCode  string
}

func newClientFactory(cmd *cobra.Command) *clientFactory {
	return &clientFactory{
		cmd:       cmd,
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("fieldclimate-cli/%s", version),
		profile:   flags.Profile,
		auth:      flags.Auth,
		authCode:  flags.AuthCode,
	}
}

func (f *clientFactory) client() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(f.profile, f.auth)
	if err != nil {
		return nil, err
	}
	return f.newClient(cfg), nil
}

func (f *clientFactory) newClient(cfg config.ClientConfig) *api.Client {
	var client *api.Client
	switch cfg.AuthMethod {
	case config.AuthOAuth2:
		client = api.NewOAuth2(cfg.OAuth2(), f.codeProvider(cfg.ClientID))
	default:
		client = api.NewHMAC(cfg.HMAC())
	}

	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.BaseURL = strings.TrimSuffix(base, "/")
	}
	// The OAuth2 signer shares this *http.Client, so token requests get
	// the same timeout.
	if hc, ok := client.HTTP.(*http.Client); ok && f.timeout > 0 {
		hc.Timeout = f.timeout
	}
	if f.userAgent != "" {
		client.UserAgent = f.userAgent
	}
	if f.cmd != nil && flags.DryRun {
		client.HTTP = &dryrun.Doer{
			Next: client.HTTP,
			Out:  iocontext.GetIO(f.cmd.Context()).Out,
		}
	}
	return client
}

func (f *clientFactory) codeProvider(clientID string) api.AuthCodeProvider {
	if code := strings.TrimSpace(f.authCode); code != "" {
		return api.StaticCodeProvider(code)
	}
	server := auth.NewCallbackServer(clientID)
	if f.cmd != nil {
		server.Out = iocontext.GetIO(f.cmd.Context()).ErrOut
	}
	return server
}
