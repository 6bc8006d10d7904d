package http

import (
	"errors"
	"net/http"

	"github.com/swapline/miniapp/internal/miniapp/service"
	"github.com/swapline/miniapp/pkg/httpx"
	"github.com/swapline/miniapp/pkg/initdata"
	"github.com/swapline/miniapp/pkg/jwtx"
	"github.com/swapline/miniapp/pkg/slogx"
)

// writeServiceError translates service and verifier failures to the error
// envelope: 400 for structurally invalid input, 401 for anything that smells
// like a forged, stale or missing credential, 404 for an absent identity.
// Unrecognized errors are logged and surface as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Malformed input (400)
	case errors.Is(err, initdata.ErrMissingHash):
		httpx.WriteError(w, http.StatusBadRequest, "initData missing hash")
	case errors.Is(err, initdata.ErrInvalidAuthDate):
		httpx.WriteError(w, http.StatusBadRequest, "initData missing or invalid auth_date")
	case errors.Is(err, initdata.ErrFutureAuthDate):
		httpx.WriteError(w, http.StatusBadRequest, "auth_date in future")
	case errors.Is(err, service.ErrMissingUserField):
		httpx.WriteError(w, http.StatusBadRequest, "initData missing user")
	case errors.Is(err, service.ErrInvalidUserJSON):
		httpx.WriteError(w, http.StatusBadRequest, "user is not valid JSON")
	case errors.Is(err, service.ErrMissingUserID):
		httpx.WriteError(w, http.StatusBadRequest, "user has no id")
	case errors.Is(err, service.ErrInvalidLead):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())

	// Authentication failures (401)
	case errors.Is(err, initdata.ErrStale):
		httpx.WriteError(w, http.StatusUnauthorized, "initData too old")
	case errors.Is(err, initdata.ErrBadSignature):
		httpx.WriteError(w, http.StatusUnauthorized, "bad signature")
	case errors.Is(err, service.ErrMissingToken):
		httpx.WriteError(w, http.StatusUnauthorized, "missing token")
	case errors.Is(err, jwtx.ErrExpired):
		httpx.WriteError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, jwtx.ErrWrongKind):
		httpx.WriteError(w, http.StatusUnauthorized, "wrong token kind")
	case errors.Is(err, jwtx.ErrMalformed),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrNotYetValid):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, service.ErrInvalidSubject):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid token subject")

	// Identity absent (404)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user not found")

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
