package service

import (
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/pkg/jwtx"
)

// TokenService issues and decodes the stateless session tokens. Validity is
// fully determined by signature and expiry at decode time; nothing is stored
// server side.
type TokenService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue signs a token of the given kind for subject, using the TTL
// configured for that kind.
func (s *TokenService) Issue(kind jwtx.TokenKind, subject string) (string, error) {
	ttl := s.AccessTTL
	if kind == jwtx.KindRefresh {
		ttl = s.RefreshTTL
	}
	return s.Signer.Sign(jwtx.NewClaims(kind, subject, ttl, time.Now()))
}

// IssuePair mints a fresh access+refresh pair for subject. Both login and
// refresh hand out full pairs.
func (s *TokenService) IssuePair(subject string) (domain.TokenPair, error) {
	access, err := s.Issue(jwtx.KindAccess, subject)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Issue(jwtx.KindRefresh, subject)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    s.AccessTTL,
		RefreshTTL:   s.RefreshTTL,
	}, nil
}

// Decode validates a token and returns its claims. Expiry and signature
// failures surface as the jwtx sentinel errors.
func (s *TokenService) Decode(token string) (jwtx.Claims, error) {
	return s.Verifier.Verify(token)
}
