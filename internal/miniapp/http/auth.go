package http

import (
	"encoding/json"
	"net/http"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/service"
	"github.com/swapline/miniapp/pkg/httpx"
	"github.com/swapline/miniapp/pkg/slogx"
)

// LoginRequest is the login body the Mini App posts. Meta is an opaque
// client-supplied object that is logged for diagnostics and otherwise
// ignored.
type LoginRequest struct {
	InitData string         `json:"initData"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// TokenEnvelope is the success payload shared by login and refresh.
type TokenEnvelope struct {
	OK           bool   `json:"ok"`
	TgUserID     string `json:"tg_user_id,omitempty"`
	Username     string `json:"username,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func tokenEnvelope(pair domain.TokenPair) TokenEnvelope {
	return TokenEnvelope{
		OK:           true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(pair.AccessTTL.Seconds()),
	}
}

type LoginHandler struct {
	AuthService *service.AuthService
	Cookies     CookiePolicy
}

// ServeHTTP handles Mini App login.
//
//	@Summary		Telegram Mini App login
//	@Description	Verifies the signed initData payload from the Telegram WebView,
//	@Description	upserts the identity it asserts and issues an access/refresh token
//	@Description	pair. Tokens are also set as HttpOnly cookies.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest		true	"initData and optional client meta"
//	@Success		200		{object}	TokenEnvelope		"tg_user_id, username, tokens"
//	@Failure		400		{object}	httpx.ErrorResponse	"structurally invalid initData"
//	@Failure		401		{object}	httpx.ErrorResponse	"stale or forged signature"
//	@Router			/v1/auth/telegram-webapp [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.InitData == "" {
		httpx.WriteError(w, http.StatusBadRequest, "initData is required")
		return
	}

	if len(req.Meta) > 0 {
		log.Info("login meta", "meta", req.Meta)
	}

	user, pair, err := h.AuthService.Login(ctx, req.InitData)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := tokenEnvelope(pair)
	response.TgUserID = user.TelegramID
	response.Username = user.Username

	setTokenCookies(w, pair, h.Cookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}

type RefreshHandler struct {
	AuthService *service.AuthService
	Cookies     CookiePolicy
}

// ServeHTTP handles token refresh.
//
//	@Summary		Refresh session tokens
//	@Description	Reads the refresh token from its cookie (never from a header) and
//	@Description	issues a fresh access/refresh pair for the same subject.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	TokenEnvelope		"new token pair"
//	@Failure		401	{object}	httpx.ErrorResponse	"cookie missing, token invalid or wrong kind"
//	@Router			/v1/auth/refresh [post]
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Refresh tokens travel only via cookie.
	var refreshToken string
	if cookie, err := r.Cookie(service.RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	pair, err := h.AuthService.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setTokenCookies(w, pair, h.Cookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenEnvelope(pair))
}
