package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. The token
// is the sole proof of authentication; expiry is the only forced
// invalidation mechanism (there is no server-side revocation list).
const DefaultSessionTTL = 24 * time.Hour

// Claims are the session-token claims shared across the service. Keep
// changes additive so previously issued tokens stay parseable.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated account.
	Username string `json:"username,omitempty"`

	// Email of the authenticated account (stored lowercase).
	Email string `json:"email,omitempty"`

	// Role is one of "customer", "seller" or "admin".
	Role string `json:"role,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a login session.
func NewSessionClaims(
	subject, username, email, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		Email:    email,
		Role:     role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// Authorize reports whether the token's role satisfies the required role.
// "admin" satisfies any gate (superuser override); otherwise an exact
// match is required. Pure predicate, no I/O.
func (c *Claims) Authorize(requiredRole string) bool {
	if c.Role == "admin" {
		return true
	}
	return c.Role == requiredRole
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
