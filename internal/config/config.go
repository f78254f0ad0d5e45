package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
)

const (
	serviceName       = "fieldclimate-cli"
	accountKey        = "default"
	defaultProfile    = "default"
	profilePrefix     = "profile:"
	profileIndexKey   = "profiles_index"
	currentProfileKey = "current_profile"

	envKeyringBackend       = "FIELDCLIMATE_KEYRING_BACKEND"
	envKeyringBackendShort  = "FC_KEYRING_BACKEND"
	envKeyringPassword      = "FIELDCLIMATE_KEYRING_PASSWORD"
	envKeyringPasswordShort = "FC_KEYRING_PASSWORD"
	envCredentialsDir       = "FIELDCLIMATE_CREDENTIALS_DIR"
	envCredentialsDirShort  = "FC_CREDENTIALS_DIR"

	keyringBackendAuto   = "auto"
	keyringBackendFile   = "file"
	keyringBackendSystem = "system"
)

// Credential environment variables.
const (
	EnvHMACPublicKey  = "FIELDCLIMATE_HMAC_PUBLIC_KEY"
	EnvHMACPrivateKey = "FIELDCLIMATE_HMAC_PRIVATE_KEY"
	EnvClientID       = "FIELDCLIMATE_CLIENT_ID"
	EnvClientSecret   = "FIELDCLIMATE_CLIENT_SECRET"
	EnvBaseURL        = "FIELDCLIMATE_BASE_URL"
	EnvAuthMethod     = "FIELDCLIMATE_AUTH"
	EnvProfile        = "FIELDCLIMATE_PROFILE"
)

// Authentication methods.
const (
	AuthHMAC   = "hmac"
	AuthOAuth2 = "oauth2"
)

// AuthMethods lists the accepted values of Credentials.AuthMethod.
var AuthMethods = []string{AuthHMAC, AuthOAuth2}

// openKeyring is a package-level function for opening keyrings.
// It can be replaced in tests to use a mock keyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// SetOpenKeyring allows replacing the keyring opener for testing.
// Returns a cleanup function that restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// Credentials is what a profile stores. Tokens are never stored.
type Credentials struct {
	AuthMethod   string `json:"auth_method" validate:"required,oneof=hmac oauth2"`
	BaseURL      string `json:"base_url,omitempty" validate:"omitempty,url"`
	PublicKey    string `json:"public_key,omitempty" validate:"required_if=AuthMethod hmac"`
	PrivateKey   string `json:"private_key,omitempty" validate:"required_if=AuthMethod hmac"`
	ClientID     string `json:"client_id,omitempty" validate:"required_if=AuthMethod oauth2"`
	ClientSecret string `json:"client_secret,omitempty" validate:"required_if=AuthMethod oauth2"`
}

// HMAC returns the key pair for api.NewHMAC.
func (c Credentials) HMAC() api.HMACCredentials {
	return api.HMACCredentials{PublicKey: c.PublicKey, PrivateKey: c.PrivateKey}
}

// OAuth2 returns the application credentials for api.NewOAuth2.
func (c Credentials) OAuth2() api.ClientCredentials {
	return api.ClientCredentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

// HasHMAC reports whether any part of a key pair is set.
func (c Credentials) HasHMAC() bool {
	return c.PublicKey != "" || c.PrivateKey != ""
}

// HasOAuth2 reports whether any part of the application credentials is set.
func (c Credentials) HasOAuth2() bool {
	return c.ClientID != "" || c.ClientSecret != ""
}

// InferAuthMethod fills AuthMethod from whichever credential set is present.
// HMAC wins when both are.
func (c *Credentials) InferAuthMethod() {
	if c.AuthMethod != "" {
		return
	}
	switch {
	case c.HasHMAC():
		c.AuthMethod = AuthHMAC
	case c.HasOAuth2():
		c.AuthMethod = AuthOAuth2
	}
}

// IsZero reports whether no credential field is set.
func (c Credentials) IsZero() bool {
	return !c.HasHMAC() && !c.HasOAuth2() && c.BaseURL == "" && c.AuthMethod == ""
}

// Merge overlays the non-empty fields of other onto c.
func (c Credentials) Merge(other Credentials) Credentials {
	if other.AuthMethod != "" {
		c.AuthMethod = other.AuthMethod
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.PublicKey != "" {
		c.PublicKey = other.PublicKey
	}
	if other.PrivateKey != "" {
		c.PrivateKey = other.PrivateKey
	}
	if other.ClientID != "" {
		c.ClientID = other.ClientID
	}
	if other.ClientSecret != "" {
		c.ClientSecret = other.ClientSecret
	}
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the credentials for the chosen method are complete.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return &ValidationError{Problems: msgs}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required for %s authentication", fe.Field(), strings.Fields(fe.Param())[1])
	case "oneof":
		return fmt.Sprintf("%s must be one of %s (got %q)", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got %q)", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// ValidationError lists every problem found in a Credentials value.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid credentials: " + strings.Join(e.Problems, "; ")
}

// ErrNotConfigured is returned when no credentials are configured
var ErrNotConfigured = errors.New("fieldclimate not configured - run 'fieldclimate auth login' or set " + EnvHMACPublicKey + "/" + EnvHMACPrivateKey)

// LoadEnvFile loads variables from a dotenv file. Variables already set in
// the environment are not overwritten.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// ReadEnvFile parses a dotenv file into credentials without touching the
// process environment.
func ReadEnvFile(path string) (Credentials, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	return credentialsFromLookup(func(key string) string { return strings.TrimSpace(vars[key]) }), nil
}

// DefaultEnvFile returns ~/.fieldclimate/.env, or "" when the home directory is unknown.
func DefaultEnvFile() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return ""
	}
	return filepath.Join(home, ".fieldclimate", ".env")
}

// EnvCredentials reads credentials from FIELDCLIMATE_* variables.
func EnvCredentials() Credentials {
	return credentialsFromLookup(func(key string) string { return firstNonBlankEnv(key) })
}

func credentialsFromLookup(get func(string) string) Credentials {
	return Credentials{
		AuthMethod:   strings.ToLower(get(EnvAuthMethod)),
		BaseURL:      strings.TrimSuffix(get(EnvBaseURL), "/"),
		PublicKey:    get(EnvHMACPublicKey),
		PrivateKey:   get(EnvHMACPrivateKey),
		ClientID:     get(EnvClientID),
		ClientSecret: get(EnvClientSecret),
	}
}

// keyringConfig returns the keyring configuration
func keyringConfig() keyring.Config {
	cfg := keyring.Config{
		ServiceName: serviceName,
	}

	backend := keyringBackendMode()
	if backend == keyringBackendSystem {
		return cfg
	}

	// Always configure file backend details in auto mode so keyring.Open can
	// fall through to encrypted file storage when native backends are missing.
	configureFileBackend(&cfg)

	// Headless Linux should bypass other backends and use encrypted file storage.
	if shouldForceFileBackend(runtime.GOOS, backend, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	return cfg
}

func keyringBackendMode() string {
	backend := strings.ToLower(firstNonBlankEnv(envKeyringBackend, envKeyringBackendShort))
	switch backend {
	case "", keyringBackendAuto:
		return keyringBackendAuto
	case keyringBackendFile:
		return keyringBackendFile
	case keyringBackendSystem, "os", "native":
		return keyringBackendSystem
	default:
		return keyringBackendAuto
	}
}

func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	if backend == keyringBackendFile {
		return true
	}
	if backend != keyringBackendAuto {
		return false
	}
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

func configureFileBackend(cfg *keyring.Config) {
	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword
}

func keyringFileDir() string {
	base := firstNonBlankEnv(envCredentialsDir, envCredentialsDirShort)
	if base == "" {
		if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = filepath.Join(dir, serviceName)
		}
	}
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			base = filepath.Join(home, ".config", serviceName)
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), serviceName)
	}
	return filepath.Join(base, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password, ok := firstNonBlankSecretEnv(envKeyringPassword, envKeyringPasswordShort); ok {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s when using file keyring in non-interactive environments", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

func firstNonBlankEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func firstNonBlankSecretEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		value, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		return value, true
	}
	return "", false
}

func profileKey(name string) string {
	if name == "" {
		name = defaultProfile
	}
	if name == defaultProfile {
		return accountKey
	}
	return profilePrefix + name
}

func loadProfileIndex(ring keyring.Keyring) ([]string, error) {
	item, err := ring.Get(profileIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get profile index: %w", err)
	}
	var profiles []string
	if err := json.Unmarshal(item.Data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile index: %w", err)
	}
	return profiles, nil
}

func saveProfileIndex(ring keyring.Keyring, profiles []string) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profile index: %w", err)
	}
	return ring.Set(keyring.Item{
		Key:  profileIndexKey,
		Data: data,
	})
}

func normalizeProfiles(profiles []string) []string {
	seen := make(map[string]struct{}, len(profiles))
	var out []string
	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SaveProfile validates and stores credentials under a named profile, then
// makes it the current profile.
func SaveProfile(profile string, creds Credentials) error {
	if profile == "" {
		profile = defaultProfile
	}
	creds.InferAuthMethod()
	if err := creds.Validate(); err != nil {
		return err
	}

	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := ring.Set(keyring.Item{
		Key:  profileKey(profile),
		Data: data,
	}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	profiles, err := loadProfileIndex(ring)
	if err != nil {
		return err
	}
	profiles = normalizeProfiles(append(profiles, profile))
	if err := saveProfileIndex(ring, profiles); err != nil {
		return err
	}

	return SetCurrentProfile(profile)
}

// LoadProfile retrieves credentials for a named profile
func LoadProfile(profile string) (Credentials, error) {
	if profile == "" {
		profile = defaultProfile
	}

	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to open keyring: %w", err)
	}

	item, err := ring.Get(profileKey(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Credentials{}, ErrNotConfigured
		}
		return Credentials{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(item.Data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return creds, nil
}

// DeleteProfile removes a stored profile
func DeleteProfile(profile string) error {
	if profile == "" {
		profile = defaultProfile
	}

	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}

	if err := ring.Remove(profileKey(profile)); err != nil {
		if !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("failed to remove profile: %w", err)
		}
	}

	profiles, err := loadProfileIndex(ring)
	if err != nil {
		return err
	}
	var remaining []string
	for _, p := range profiles {
		if p != profile {
			remaining = append(remaining, p)
		}
	}
	if err := saveProfileIndex(ring, remaining); err != nil {
		return err
	}

	current, err := CurrentProfile()
	if err == nil && current == profile {
		next := defaultProfile
		if len(remaining) > 0 {
			next = remaining[0]
		}
		_ = SetCurrentProfile(next)
	}

	return nil
}

// ListProfiles returns the known profile names
func ListProfiles() ([]string, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	profiles, err := loadProfileIndex(ring)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		if _, err := ring.Get(accountKey); err == nil {
			return []string{defaultProfile}, nil
		}
	}
	return profiles, nil
}

// CurrentProfile returns the active profile name
func CurrentProfile() (string, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return "", fmt.Errorf("failed to open keyring: %w", err)
	}

	item, err := ring.Get(currentProfileKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return defaultProfile, nil
		}
		return "", fmt.Errorf("failed to get current profile: %w", err)
	}
	return string(item.Data), nil
}

// SetCurrentProfile sets the active profile name
func SetCurrentProfile(profile string) error {
	if profile == "" {
		profile = defaultProfile
	}

	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}

	return ring.Set(keyring.Item{
		Key:  currentProfileKey,
		Data: []byte(profile),
	})
}
