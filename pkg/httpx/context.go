package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID carries the authenticated Telegram user id as a string.
	CtxKeyUserID ctxKey = "user_id"
)

// UserIDFromContext returns the authenticated Telegram user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// ContextWithUserID stores the authenticated Telegram user id.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}
