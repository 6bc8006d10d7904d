package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/service"
	"github.com/swapline/miniapp/internal/miniapp/store/drivers/sqlite"
	"github.com/swapline/miniapp/pkg/initdata"
	"github.com/swapline/miniapp/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testBotToken = "7000000002:AAExampleBotTokenForRouterTests"

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	h, err := jwtx.NewHMAC("HS256", []byte("router-test-secret"))
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:     h,
		Verifier:   h,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(st, logger, "test")
	r.AuthService = &service.AuthService{
		Store:          st,
		Tokens:         tokens,
		BotToken:       testBotToken,
		InitDataMaxAge: 5 * time.Minute,
	}
	r.LeadService = &service.LeadService{Store: st}
	r.Gate = &service.SessionGate{Tokens: tokens, Store: st}
	r.Cookies = CookiePolicy{Secure: false, SameSite: http.SameSiteLaxMode}
	r.ApplyRoutes()

	return r
}

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

func doLogin(t *testing.T, r *Router, userJSON string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(LoginRequest{InitData: signedInitData(t, userJSON)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/telegram-webapp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLoginIssuesTokensAndCookies(t *testing.T) {
	r := newTestRouter(t)

	rec := doLogin(t, r, `{"id": 99281, "username": "wren"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "99281", resp.TgUserID)
	require.Equal(t, "wren", resp.Username)
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, int((15 * time.Minute).Seconds()), resp.ExpiresIn)

	access := responseCookie(t, rec, service.AccessTokenCookie)
	require.Equal(t, resp.AccessToken, access.Value)
	require.True(t, access.HttpOnly)
	require.Equal(t, "/", access.Path)

	refresh := responseCookie(t, rec, service.RefreshTokenCookie)
	require.Equal(t, resp.RefreshToken, refresh.Value)
	require.True(t, refresh.HttpOnly)
}

func TestLoginThenMe(t *testing.T) {
	r := newTestRouter(t)

	rec := doLogin(t, r, `{"id": 424242, "username": "mallory"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var login TokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, req)

	require.Equal(t, http.StatusOK, meRec.Code)

	var me MeResponse
	require.NoError(t, json.Unmarshal(meRec.Body.Bytes(), &me))
	require.True(t, me.OK)
	require.Equal(t, "424242", me.TgUserID)
	require.Equal(t, "mallory", me.Username)
	require.NotEmpty(t, me.ID)
}

func TestMeAcceptsCookieWithoutHeader(t *testing.T) {
	r := newTestRouter(t)

	rec := doLogin(t, r, `{"id": 515151, "username": "quinn"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.AddCookie(responseCookie(t, rec, service.AccessTokenCookie))
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, req)

	require.Equal(t, http.StatusOK, meRec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRejectsRefreshToken(t *testing.T) {
	r := newTestRouter(t)

	rec := doLogin(t, r, `{"id": 616161, "username": "sam"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var login TokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.RefreshToken)
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, req)

	require.Equal(t, http.StatusUnauthorized, meRec.Code)
}

func TestRepeatLoginUpdatesUsername(t *testing.T) {
	r := newTestRouter(t)

	rec := doLogin(t, r, `{"id": 717171, "username": "before"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doLogin(t, r, `{"id": 717171, "username": "after"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "after", resp.Username)
}

func TestLoginRejectsForgedSignature(t *testing.T) {
	r := newTestRouter(t)

	payload := signedInitData(t, `{"id": 818181}`)
	payload += "tampered"

	body, err := json.Marshal(LoginRequest{InitData: payload})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/telegram-webapp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsMissingInitData(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/telegram-webapp",
		bytes.NewReader([]byte(`{"initData": ""}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsInvalidJSONBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/telegram-webapp",
		bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	r := newTestRouter(t)

	loginRec := doLogin(t, r, `{"id": 919191, "username": "ren"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(responseCookie(t, loginRec, service.RefreshTokenCookie))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	// The new access token must work against a protected endpoint.
	meReq := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, meReq)
	require.Equal(t, http.StatusOK, meRec.Code)
}

func TestRefreshRequiresCookie(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	r := newTestRouter(t)

	loginRec := doLogin(t, r, `{"id": 121212, "username": "kit"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)

	var login TokenEnvelope
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: service.RefreshTokenCookie, Value: login.AccessToken})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeadCreateAndList(t *testing.T) {
	r := newTestRouter(t)

	loginRec := doLogin(t, r, `{"id": 131313, "username": "nova"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)

	var login TokenEnvelope
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &login))

	body, err := json.Marshal(LeadCreateRequest{
		City:          "Lisbon",
		ExchangeType:  "usdt",
		ReceiveType:   "cash",
		Sum:           "1500",
		WalletAddress: "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE",
		Meta:          map[string]any{"source": "mini_app"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/leads", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created LeadCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.True(t, created.OK)
	require.NotEmpty(t, created.Lead.ID)
	require.False(t, created.Lead.CreatedAt.IsZero())
	require.Equal(t, "131313", created.Lead.TgUserID)
	require.Equal(t, "Lisbon", created.Lead.City)

	listReq := httptest.NewRequest(http.MethodGet, "/v1/leads", nil)
	listReq.Header.Set("Authorization", "Bearer "+login.AccessToken)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, listReq)

	require.Equal(t, http.StatusOK, listRec.Code)

	var list LeadListResponse
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	require.Len(t, list.Leads, 1)
	require.Equal(t, created.Lead.ID, list.Leads[0].ID)
}

func TestLeadCreateRejectsMissingFields(t *testing.T) {
	r := newTestRouter(t)

	loginRec := doLogin(t, r, `{"id": 141414, "username": "ash"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)

	var login TokenEnvelope
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &login))

	body, err := json.Marshal(LeadCreateRequest{City: "Lisbon"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/leads", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadEndpointsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/leads",
		bytes.NewReader([]byte(`{"city": "Lisbon"}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/v1/leads", nil)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusUnauthorized, listRec.Code)
}

func TestHealthProbes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/livez", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "ok", resp.Status)
		require.Equal(t, "test", resp.Version)
	}
}
