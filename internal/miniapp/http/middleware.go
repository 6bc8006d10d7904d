package http

import (
	"context"
	"net/http"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/service"
	"github.com/swapline/miniapp/pkg/httpx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// AuthnMiddleware gates protected endpoints through the session gate and
// injects the authenticated identity into the request context.
func AuthnMiddleware(gate *service.SessionGate) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gate.Authenticate(r)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			ctx = httpx.ContextWithUserID(ctx, user.TelegramID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity injected by AuthnMiddleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(domain.User)
	return user, ok
}
