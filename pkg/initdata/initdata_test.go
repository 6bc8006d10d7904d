package initdata

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testBotToken = "7000000001:AAExampleBotTokenForVerifierTests"

// buildInitData assembles a signed URL-encoded payload from fields.
func buildInitData(t *testing.T, fields map[string]string, botToken string) string {
	t.Helper()

	hash := Sign(fields, botToken)

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func validFields(authDate time.Time) map[string]string {
	return map[string]string{
		"auth_date":     strconv.FormatInt(authDate.Unix(), 10),
		"query_id":      "AAH9mQEAAAAAAP2ZAQyzwu_F",
		"user":          `{"id":12345,"first_name":"Alice","username":"alice"}`,
		"chat_instance": "-377897232008232",
	}
}

func TestVerifySucceedsAndStripsHash(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	fields := validFields(now.Add(-time.Minute))
	payload := buildInitData(t, fields, testBotToken)

	verified, err := verifyAt(payload, testBotToken, 5*time.Minute, now)
	require.NoError(t, err)
	require.Equal(t, fields, verified)
	require.NotContains(t, verified, "hash")
}

func TestVerifyIsOrderIndependent(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	fields := validFields(now)
	hash := Sign(fields, testBotToken)

	// Assemble the query string in a few shuffled field orders; the
	// canonicalization must make them all equivalent.
	keys := []string{"auth_date", "query_id", "user", "chat_instance", "hash"}
	withHash := map[string]string{"hash": hash}
	for k, v := range fields {
		withHash[k] = v
	}

	rng := rand.New(rand.NewSource(42))
	for range 5 {
		rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

		payload := ""
		for i, k := range keys {
			if i > 0 {
				payload += "&"
			}
			payload += url.QueryEscape(k) + "=" + url.QueryEscape(withHash[k])
		}

		verified, err := verifyAt(payload, testBotToken, 5*time.Minute, now)
		require.NoError(t, err)
		require.Equal(t, fields, verified)
	}
}

func TestVerifyRejectsCorruptedHash(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	fields := validFields(now)
	hash := Sign(fields, testBotToken)

	// Corrupt each nibble of the hex digest in turn.
	for i := 0; i < len(hash); i += 8 {
		corrupted := []byte(hash)
		if corrupted[i] == 'f' {
			corrupted[i] = '0'
		} else {
			corrupted[i] = 'f'
		}

		values := url.Values{}
		for k, v := range fields {
			values.Set(k, v)
		}
		values.Set("hash", string(corrupted))

		_, err := verifyAt(values.Encode(), testBotToken, 5*time.Minute, now)
		require.ErrorIs(t, err, ErrBadSignature, "corrupted byte at %d", i)
	}
}

func TestVerifyRejectsWrongBotToken(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	payload := buildInitData(t, validFields(now), testBotToken)

	_, err := verifyAt(payload, "7000000002:AADifferentBotToken", 5*time.Minute, now)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyFreshnessWindow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	maxAge := 300 * time.Second

	cases := []struct {
		name string
		age  time.Duration
		want error
	}{
		{"fresh", time.Minute, nil},
		{"exactly at the boundary", maxAge, nil},
		{"one second past the boundary", maxAge + time.Second, ErrStale},
		{"far in the past", 24 * time.Hour, ErrStale},
		{"from the future", -time.Minute, ErrFutureAuthDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := buildInitData(t, validFields(now.Add(-tc.age)), testBotToken)

			_, err := verifyAt(payload, testBotToken, maxAge, now)
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestVerifyMalformedPayloads(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	t.Run("missing hash", func(t *testing.T) {
		fields := validFields(now)
		values := url.Values{}
		for k, v := range fields {
			values.Set(k, v)
		}

		_, err := verifyAt(values.Encode(), testBotToken, 5*time.Minute, now)
		require.ErrorIs(t, err, ErrMissingHash)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := verifyAt("", testBotToken, 5*time.Minute, now)
		require.ErrorIs(t, err, ErrMissingHash)
	})

	for _, authDate := range []string{"", "abc", "0", "-5", "12.5"} {
		t.Run(fmt.Sprintf("auth_date=%q", authDate), func(t *testing.T) {
			fields := validFields(now)
			if authDate == "" {
				delete(fields, "auth_date")
			} else {
				fields["auth_date"] = authDate
			}
			payload := buildInitData(t, fields, testBotToken)

			_, err := verifyAt(payload, testBotToken, 5*time.Minute, now)
			require.ErrorIs(t, err, ErrInvalidAuthDate)
		})
	}
}

func TestParseQuerySemantics(t *testing.T) {
	t.Parallel()

	t.Run("keeps blank values", func(t *testing.T) {
		fields := parseQuery("a=&b=1")
		require.Equal(t, map[string]string{"a": "", "b": "1"}, fields)
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		fields := parseQuery("a=1&a=2&b=x")
		require.Equal(t, map[string]string{"a": "2", "b": "x"}, fields)
	})

	t.Run("decodes percent escapes and plus", func(t *testing.T) {
		fields := parseQuery("user=%7B%22id%22%3A1%7D&name=a+b")
		require.Equal(t, map[string]string{"user": `{"id":1}`, "name": "a b"}, fields)
	})
}
