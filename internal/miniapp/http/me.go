package http

import (
	"net/http"

	"github.com/swapline/miniapp/pkg/httpx"
)

// MeResponse describes the authenticated user.
type MeResponse struct {
	OK       bool   `json:"ok"`
	ID       string `json:"id"`
	TgUserID string `json:"tg_user_id"`
	Username string `json:"username,omitempty"`
}

// MeHandler returns the identity resolved by the session gate.
type MeHandler struct{}

// ServeHTTP handles GET /v1/me.
//
//	@Summary		Current user
//	@Description	Returns the authenticated user's profile.
//	@Tags			me
//	@Produce		json
//	@Success		200	{object}	MeResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/me [get]
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MeResponse{
		OK:       true,
		ID:       user.ID,
		TgUserID: user.TelegramID,
		Username: user.Username,
	})
}
