package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrWrongKind   = errors.New("jwtx: wrong token kind")
)

// Signer signs claims into a compact token string.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a token and returns its claims if it is legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HMAC signs and verifies tokens with a shared server secret. It implements
// both Signer and Verifier since symmetric keys do both jobs.
type HMAC struct {
	method *jwt.SigningMethodHMAC
	secret []byte
}

// NewHMAC builds an HMAC signer/verifier for the given algorithm identifier
// (HS256, HS384 or HS512).
func NewHMAC(alg string, secret []byte) (*HMAC, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}

	var method *jwt.SigningMethodHMAC
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}

	return &HMAC{method: method, secret: secret}, nil
}

func (h *HMAC) Alg() string { return h.method.Alg() }

func (h *HMAC) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(h.method, c).SignedString(h.secret)
}

// Verify parses and validates token, mapping library failures onto the
// package's sentinel errors so callers can distinguish expiry from forgery.
func (h *HMAC) Verify(token string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{h.method.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	return claims, nil
}
