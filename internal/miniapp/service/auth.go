package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/store"
	"github.com/swapline/miniapp/pkg/idx"
	"github.com/swapline/miniapp/pkg/initdata"
	"github.com/swapline/miniapp/pkg/jwtx"
	"github.com/swapline/miniapp/pkg/slogx"
)

var (
	ErrMissingUserField = errors.New("initdata missing user field")
	ErrInvalidUserJSON  = errors.New("user field is not valid JSON")
	ErrMissingUserID    = errors.New("user object has no id")

	ErrMissingToken   = errors.New("missing token")
	ErrInvalidSubject = errors.New("invalid token subject")
	ErrUserNotFound   = errors.New("user not found")
)

// AuthService orchestrates the two user-facing auth flows: initial login
// from a verified initData payload and token refresh.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService

	BotToken       string
	InitDataMaxAge time.Duration
}

// telegramUser is the subset of Telegram's user object the backend cares
// about. The id is decoded as json.Number so 64-bit ids survive intact;
// additional keys are ignored.
type telegramUser struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
}

// Login verifies initData, upserts the identity it asserts and issues a
// token pair. The identity upsert and token issuance are independent: a
// token failure after a successful upsert leaves the updated username in
// place, which is an acceptable outcome for an idempotent retryable flow.
func (s *AuthService) Login(ctx context.Context, rawInitData string) (domain.User, domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	fields, err := initdata.Verify(rawInitData, s.BotToken, s.InitDataMaxAge)
	if err != nil {
		log.Warn("initdata verification failed", "err", err)
		return domain.User{}, domain.TokenPair{}, err
	}

	userJSON, ok := fields["user"]
	if !ok {
		return domain.User{}, domain.TokenPair{}, ErrMissingUserField
	}

	var tgUser telegramUser
	if err := json.Unmarshal([]byte(userJSON), &tgUser); err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidUserJSON, err)
	}
	if tgUser.ID.String() == "" {
		return domain.User{}, domain.TokenPair{}, ErrMissingUserID
	}

	user, err := s.Store.Users().Upsert(ctx, domain.User{
		ID:         idx.New().String(),
		TelegramID: tgUser.ID.String(),
		Username:   tgUser.Username,
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("upsert user: %w", err)
	}

	pair, err := s.Tokens.IssuePair(user.TelegramID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	log.Info("mini app login", "tg_user_id", user.TelegramID)
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh access+refresh pair.
// The old refresh token is not invalidated server side; tokens are stateless
// and expire naturally.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	if refreshToken == "" {
		return domain.TokenPair{}, ErrMissingToken
	}

	claims, err := s.Tokens.Decode(refreshToken)
	if err != nil {
		log.Warn("refresh token rejected", "err", err)
		return domain.TokenPair{}, err
	}
	if err := claims.RequireKind(jwtx.KindRefresh); err != nil {
		log.Warn("refresh attempted with non-refresh token", "kind", claims.Kind)
		return domain.TokenPair{}, err
	}
	if claims.Subject == "" {
		return domain.TokenPair{}, ErrInvalidSubject
	}

	pair, err := s.Tokens.IssuePair(claims.Subject)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	log.Info("session refreshed", "tg_user_id", claims.Subject)
	return pair, nil
}
