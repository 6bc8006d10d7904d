// Package initdata verifies the signed initData payload a Telegram Mini App
// client presents when it opens the WebView. The algorithm follows
// https://core.telegram.org/bots/webapps#validating-data-received-via-the-mini-app
// and has to match it bit for bit: the data-check-string canonicalization and
// the derived secret key are what the Telegram client signed.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingHash     = errors.New("initdata: missing hash")
	ErrInvalidAuthDate = errors.New("initdata: missing or invalid auth_date")
	ErrFutureAuthDate  = errors.New("initdata: auth_date in the future")
	ErrStale           = errors.New("initdata: too old")
	ErrBadSignature    = errors.New("initdata: bad signature")
)

// Verify checks raw initData against the bot token and freshness window and
// returns the verified fields (minus hash) on success. A payload exactly
// maxAge old is still accepted.
func Verify(initData, botToken string, maxAge time.Duration) (map[string]string, error) {
	return verifyAt(initData, botToken, maxAge, time.Now())
}

func verifyAt(initData, botToken string, maxAge time.Duration, now time.Time) (map[string]string, error) {
	fields := parseQuery(initData)

	receivedHash, ok := fields["hash"]
	delete(fields, "hash")
	if !ok || receivedHash == "" {
		return nil, ErrMissingHash
	}

	authDate, err := strconv.ParseInt(fields["auth_date"], 10, 64)
	if err != nil || authDate <= 0 {
		return nil, ErrInvalidAuthDate
	}

	age := now.Unix() - authDate
	if age < 0 {
		return nil, ErrFutureAuthDate
	}
	if age > int64(maxAge/time.Second) {
		return nil, ErrStale
	}

	calc := Sign(fields, botToken)
	if !hmac.Equal([]byte(calc), []byte(receivedHash)) {
		return nil, ErrBadSignature
	}

	return fields, nil
}

// Sign computes the hex-encoded signature Telegram would produce for the
// given fields (which must not include "hash"). Exposed so tests and Mini App
// simulators can mint valid payloads.
func Sign(fields map[string]string, botToken string) string {
	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	digest := hmacSHA256(secret, []byte(dataCheckString(fields)))
	return hex.EncodeToString(digest)
}

// dataCheckString joins the fields as key=value lines sorted by key in byte
// order. The ordering is load-bearing: it must match the signer exactly.
func dataCheckString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	return strings.Join(pairs, "\n")
}

// parseQuery parses a URL-encoded query string keeping blank values. Repeated
// keys resolve to the last occurrence. Values that fail percent-decoding are
// kept verbatim rather than dropping the pair.
func parseQuery(query string) map[string]string {
	fields := make(map[string]string)
	for _, segment := range strings.Split(query, "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		fields[unescape(key)] = unescape(value)
	}
	return fields
}

func unescape(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
