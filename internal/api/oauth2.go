package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"

	"github.com/fieldclimate/fieldclimate-cli/internal/debug"
)

const (
	DefaultTokenURL     = "https://oauth.fieldclimate.com/token"
	DefaultAuthorizeURL = "https://oauth.fieldclimate.com/authorize"

	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"

	// The API expects the header value itself to repeat the header name.
	bearerPrefix = "Authorization: Bearer "
)

// ClientCredentials identify an OAuth2 application.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AuthorizeURL returns the page where a user grants access to clientID.
func AuthorizeURL(clientID string) string {
	return DefaultAuthorizeURL + "?response_type=code&client_id=" + url.QueryEscape(clientID) + "&state=xyz"
}

// OAuth2Signer attaches a bearer token to requests and owns the token pair.
//
// The first Sign acquires a token with the authorization-code grant. Refresh
// renews it with the refresh grant after a 401. Token state is only modified
// under mu, so concurrent callers share a single token request.
type OAuth2Signer struct {
	TokenURL string
	HTTP     HTTPDoer

	creds ClientCredentials
	codes AuthCodeProvider

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var (
	_ Signer         = (*OAuth2Signer)(nil)
	_ TokenRefresher = (*OAuth2Signer)(nil)
)

// NewOAuth2Signer creates a signer with an empty token pair.
func NewOAuth2Signer(creds ClientCredentials, codes AuthCodeProvider) *OAuth2Signer {
	return &OAuth2Signer{
		TokenURL: DefaultTokenURL,
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		creds:    creds,
		codes:    codes,
	}
}

// Sign sets the Authorization header, acquiring a token first if none is held.
func (s *OAuth2Signer) Sign(ctx context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" {
		if err := s.acquireLocked(ctx); err != nil {
			return err
		}
	}
	req.Headers.Set("Authorization", bearerPrefix+s.accessToken)
	return nil
}

// Refresh renews the token pair after the API rejected a request. When the
// token in rejected is no longer current another caller has already renewed
// it and no token request is made.
func (s *OAuth2Signer) Refresh(ctx context.Context, rejected *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && rejected != nil && rejected.Headers.Get("Authorization") != bearerPrefix+s.accessToken {
		return nil
	}
	if s.accessToken != "" && s.refreshToken == "" {
		// Authorization codes are single-use, so the code grant cannot be replayed.
		return &AuthError{StatusCode: http.StatusUnauthorized, Reason: "access token rejected and no refresh token was issued"}
	}
	return s.acquireLocked(ctx)
}

// Tokens returns the current access and refresh tokens.
func (s *OAuth2Signer) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *OAuth2Signer) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   DefaultAuthorizeURL,
			TokenURL:  s.tokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// acquireLocked runs the refresh grant when a refresh token is held and the
// authorization-code grant otherwise. On failure the token pair is left
// exactly as it was.
func (s *OAuth2Signer) acquireLocked(ctx context.Context) error {
	conf := s.config()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient())

	var (
		tok   *oauth2.Token
		err   error
		grant string
	)
	if s.refreshToken != "" {
		grant = grantRefreshToken
		tok, err = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken}).Token()
	} else {
		if s.codes == nil {
			return &AuthError{Reason: "no authorization code provider configured"}
		}
		code, codeErr := s.codes.AuthCode(ctx)
		if codeErr != nil {
			return &AuthError{Reason: "failed to obtain authorization code", Err: codeErr}
		}
		grant = grantAuthorizationCode
		tok, err = conf.Exchange(ctx, code)
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("token request complete", "grant_type", grant, "error", err)
	}
	if err != nil {
		return tokenError(grant, err)
	}

	s.accessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.refreshToken = tok.RefreshToken
	}
	return nil
}

// tokenError converts a token endpoint failure into an *AuthError.
func tokenError(grant string, err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) && retrieve.Response != nil {
		return &AuthError{
			StatusCode: retrieve.Response.StatusCode,
			Reason:     fmt.Sprintf("token endpoint rejected %s grant", grant),
			Body:       jsonBody(retrieve.Response.StatusCode, retrieve.Body),
			Raw:        retrieve.Body,
		}
	}
	return &AuthError{Reason: "token request failed", Err: err}
}

func (s *OAuth2Signer) tokenURL() string {
	if s.TokenURL != "" {
		return s.TokenURL
	}
	return DefaultTokenURL
}

// httpClient adapts HTTP for the oauth2 package, which takes an *http.Client.
func (s *OAuth2Signer) httpClient() *http.Client {
	switch doer := s.HTTP.(type) {
	case nil:
		return http.DefaultClient
	case *http.Client:
		return doer
	default:
		return &http.Client{Transport: doerTransport{doer}}
	}
}

type doerTransport struct{ doer HTTPDoer }

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.doer.Do(req)
}
