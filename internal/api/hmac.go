package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// HMACCredentials are the key pair issued for HMAC access.
type HMACCredentials struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// HMACSigner signs every request with an HMAC-SHA256 of method, route, date
// and public key. Signing never fails and performs no I/O.
type HMACSigner struct {
	Credentials HMACCredentials
	// Now overrides the clock used for the Date header.
	Now func() time.Time
}

var _ Signer = (*HMACSigner)(nil)

// NewHMACSigner creates a signer for the given key pair.
func NewHMACSigner(creds HMACCredentials) *HMACSigner {
	return &HMACSigner{Credentials: creds}
}

// Sign sets the Date and Authorization headers.
func (s *HMACSigner) Sign(_ context.Context, req *Request) error {
	date := s.now().UTC().Format(http.TimeFormat)
	req.Headers.Set("Date", date)
	req.Headers.Set("Authorization", "hmac "+s.Credentials.PublicKey+":"+s.signature(req.Method, req.Route, date))
	return nil
}

func (s *HMACSigner) signature(method, route, date string) string {
	mac := hmac.New(sha256.New, []byte(s.Credentials.PrivateKey))
	_, _ = mac.Write([]byte(method + "/" + route + date + s.Credentials.PublicKey))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *HMACSigner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
