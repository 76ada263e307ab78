package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrEmptySecret = errors.New("jwtx: empty signing secret")
)

// Signer mints signed session tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a session token and gives back the claims if legit.
// Expired-but-otherwise-valid tokens fail with ErrExpired, everything else
// with one of the invalid-token errors, so callers can message the user
// appropriately.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 signs and verifies session tokens with a single process-wide
// secret. Every instance that needs to verify another instance's tokens
// must be configured with the same secret; there is no negotiation.
type HS256 struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewHS256 builds a combined signer/verifier over the shared secret.
// The secret is read-only after construction.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &HS256{secret: secret, issuer: issuer}, nil
}

// WithLeeway returns a copy that tolerates the given clock skew when
// validating exp/nbf. Because time sync is never perfect.
func (h *HS256) WithLeeway(leeway time.Duration) *HS256 {
	cp := *h
	cp.leeway = leeway
	return &cp
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes the claims and turns them into a signed compact JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.secret)
}

// Verify parses and validates a compact token string. It enforces the
// HS256 algorithm (no "none" or asymmetric downgrade), signature, expiry
// and issuer.
func (h *HS256) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if h.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(h.leeway))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// mapParseError collapses golang-jwt's error tree into our taxonomy,
// keeping expiry distinct from everything else.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrInvalidSig
	}
}
