package domain

import "time"

// TokenPair is what the login and refresh endpoints hand back: a short-lived
// access token and a long-lived refresh token, both self-contained JWTs.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// AccessTTL and RefreshTTL drive both the expires_in field of the
	// response and the Max-Age of the matching cookies.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}
