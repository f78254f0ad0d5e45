package api

import "context"

// Signer adds authentication headers to a request envelope.
// Implementations may add or overwrite headers but never remove them.
type Signer interface {
	Sign(ctx context.Context, req *Request) error
}

// TokenRefresher is implemented by signers whose credentials can be renewed
// after the API answers 401. rejected is the envelope that was refused, so an
// implementation can tell whether another caller already renewed the token.
type TokenRefresher interface {
	Refresh(ctx context.Context, rejected *Request) error
}

// AuthCodeProvider supplies an OAuth2 authorization code on demand.
type AuthCodeProvider interface {
	AuthCode(ctx context.Context) (string, error)
}

// StaticCodeProvider hands out a code obtained out of band.
type StaticCodeProvider string

// AuthCode returns the stored code.
func (p StaticCodeProvider) AuthCode(context.Context) (string, error) {
	if p == "" {
		return "", &AuthError{Reason: "authorization code is empty"}
	}
	return string(p), nil
}
