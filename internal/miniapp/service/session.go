package service

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/store"
	"github.com/swapline/miniapp/pkg/jwtx"
)

// Cookie names shared between the gate (reading) and the auth handlers
// (setting). Refresh tokens travel only via their cookie; the access token
// may also arrive as a bearer header.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// SessionGate resolves an incoming request to an authenticated identity.
// It never creates identities; only the login flow does that.
type SessionGate struct {
	Tokens *TokenService
	Store  store.Store
}

// Authenticate extracts the access token from the request, validates it and
// looks up the identity it names.
func (g *SessionGate) Authenticate(r *http.Request) (domain.User, error) {
	token := extractAccessToken(r)
	if token == "" {
		return domain.User{}, ErrMissingToken
	}

	claims, err := g.Tokens.Decode(token)
	if err != nil {
		return domain.User{}, err
	}
	if err := claims.RequireKind(jwtx.KindAccess); err != nil {
		return domain.User{}, err
	}
	if !validSubject(claims.Subject) {
		return domain.User{}, ErrInvalidSubject
	}

	user, err := g.Store.Users().GetByTelegramID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}

// extractAccessToken prefers an Authorization bearer header (scheme match is
// case-insensitive) and falls back to the access token cookie.
func extractAccessToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, rest, ok := strings.Cut(authz, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// validSubject checks the subject parses as a Telegram user id.
func validSubject(sub string) bool {
	id, err := strconv.ParseInt(sub, 10, 64)
	return err == nil && id > 0
}
