package service

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/store"
	"github.com/swapline/miniapp/internal/miniapp/store/drivers/sqlite"
	"github.com/swapline/miniapp/pkg/initdata"
	"github.com/swapline/miniapp/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testBotToken = "7000000001:AAExampleBotTokenForServiceTests"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	h, err := jwtx.NewHMAC("HS256", []byte("service-test-secret"))
	require.NoError(t, err)

	return &TokenService{
		Signer:     h,
		Verifier:   h,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func newTestAuthService(t *testing.T, st store.Store) *AuthService {
	t.Helper()

	return &AuthService{
		Store:          st,
		Tokens:         newTestTokenService(t),
		BotToken:       testBotToken,
		InitDataMaxAge: 5 * time.Minute,
	}
}

// signedInitData builds a valid Telegram-signed payload for the given user
// JSON with auth_date set to now.
func signedInitData(t *testing.T, userJSON string) string {
	t.Helper()

	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"query_id":  "AAH9mQEAAAAAAP2ZAQyzwu_F",
	}
	if userJSON != "" {
		fields["user"] = userJSON
	}

	hash := initdata.Sign(fields, testBotToken)

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}
