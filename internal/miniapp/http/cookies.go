package http

import (
	"net/http"
	"strings"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/service"
)

// CookiePolicy controls the security attributes of the token cookies. Both
// cookies are always HttpOnly and scoped to the whole application path.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps a configured string to an http.SameSite mode,
// defaulting to Lax for anything unrecognized.
func ParseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// setTokenCookies mirrors the token pair into cookies with Max-Age matching
// each token's TTL, so the browser drops them in step with expiry.
func setTokenCookies(w http.ResponseWriter, pair domain.TokenPair, policy CookiePolicy) {
	http.SetCookie(w, &http.Cookie{
		Name:     service.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   policy.Secure,
		SameSite: policy.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     service.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(pair.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   policy.Secure,
		SameSite: policy.SameSite,
	})
}
