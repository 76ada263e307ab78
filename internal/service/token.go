package service

import (
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/pkg/jwtx"
)

// TokenService mints session tokens for authenticated accounts.
type TokenService struct {
	Signer     jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

// Mint signs a session token for the account. The claims carry the
// username, email and role so the frontend can render without a second
// round trip; authorization decisions re-check the role server side.
func (s *TokenService) Mint(account domain.Account, now time.Time) (string, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(
		account.ID,
		account.Username,
		account.Email,
		string(account.Role),
		ttl,
		s.Issuer,
		now,
	)
	return s.Signer.Sign(claims)
}
