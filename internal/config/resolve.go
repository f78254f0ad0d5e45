package config

import (
	"errors"
	"strings"
)

// Credential sources reported by ClientConfig.Source.
const (
	SourceEnv     = "env"
	SourceProfile = "profile"
	SourceMixed   = "env+profile"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Credentials
	Profile string
	Source  string
}

// ResolveClientConfig resolves credentials for an API client.
//
// FIELDCLIMATE_* variables take precedence over the stored profile field by
// field. The keyring is skipped when the environment alone is complete and no
// profile was requested. authOverride, when set, replaces the stored method.
func ResolveClientConfig(profile, authOverride string) (ClientConfig, error) {
	env := EnvCredentials()
	authOverride = strings.ToLower(strings.TrimSpace(authOverride))
	if authOverride != "" {
		env.AuthMethod = authOverride
	}

	if profile == "" {
		profile = firstNonBlankEnv(EnvProfile)
	}

	if profile == "" && envComplete(env) {
		env.InferAuthMethod()
		if err := env.Validate(); err != nil {
			return ClientConfig{}, err
		}
		return ClientConfig{Credentials: env, Source: SourceEnv}, nil
	}

	if profile == "" {
		current, err := CurrentProfile()
		if err != nil {
			return ClientConfig{}, err
		}
		profile = current
	}

	stored, err := LoadProfile(profile)
	source := SourceProfile
	switch {
	case errors.Is(err, ErrNotConfigured):
		if !env.HasHMAC() && !env.HasOAuth2() {
			return ClientConfig{}, ErrNotConfigured
		}
		source = SourceEnv
	case err != nil:
		return ClientConfig{}, err
	case env.HasHMAC() || env.HasOAuth2() || env.BaseURL != "":
		source = SourceMixed
	}

	creds := stored.Merge(env)
	creds.InferAuthMethod()
	if err := creds.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return ClientConfig{Credentials: creds, Profile: profile, Source: source}, nil
}

// envComplete reports whether the environment alone carries a full
// credential set for its method.
func envComplete(env Credentials) bool {
	switch env.AuthMethod {
	case AuthHMAC:
		return env.PublicKey != "" && env.PrivateKey != ""
	case AuthOAuth2:
		return env.ClientID != "" && env.ClientSecret != ""
	case "":
		return (env.PublicKey != "" && env.PrivateKey != "") ||
			(env.ClientID != "" && env.ClientSecret != "")
	default:
		return true
	}
}
