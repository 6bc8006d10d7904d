// Package jwtx issues and verifies the self-contained session tokens used by
// the Mini App backend. Tokens are HMAC-signed JWTs carrying a subject (the
// Telegram user id), a kind discriminator and an expiry.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short-lived access tokens limit the blast radius of a
// leaked credential; the refresh token keeps returning users signed in.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenKind discriminates access tokens from refresh tokens. The two are
// never interchangeable: every consumer checks the kind explicitly.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims are the session token claims. The kind travels in the "type" claim,
// matching what the Mini App clients already expect.
type Claims struct {
	jwt.RegisteredClaims

	Kind TokenKind `json:"type"`
}

// NewClaims builds claims for a token of the given kind and subject issued
// at now and expiring after ttl.
func NewClaims(kind TokenKind, subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}
}

// RequireKind fails with ErrWrongKind unless the claims carry the expected
// kind. This is the guard that keeps a leaked refresh token from being
// replayed as an access token (and vice versa).
func (c *Claims) RequireKind(kind TokenKind) error {
	if c.Kind != kind {
		return ErrWrongKind
	}
	return nil
}
