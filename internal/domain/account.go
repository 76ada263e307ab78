package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// ParseRole coerces arbitrary input to a valid role. Anything outside the
// known set becomes customer; the set is closed by construction.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSeller:
		return RoleSeller
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

// Brute-force countermeasure policy. Fixed constants, not configuration.
const (
	// MaxLoginAttempts is the consecutive-failure threshold that locks
	// an account.
	MaxLoginAttempts = 5

	// LockDuration is how long a locked account refuses authentication.
	LockDuration = 2 * time.Hour
)

type Account struct {
	ID           string
	Username     string
	Email        string // stored lowercase
	PasswordHash string // argon2id PHC string; never serialized
	Role         Role
	IsActive     bool

	// Brute-force countermeasure state. LoginAttempts counts consecutive
	// failures since the last success or last lock expiry; LockUntil, when
	// set and in the future, refuses authentication regardless of
	// credential correctness.
	LoginAttempts int
	LockUntil     *time.Time
	LastLogin     *time.Time

	// Password reset state: sha256 fingerprint of the opaque reset token
	// and its expiry. Issued once, redeemed once.
	ResetTokenHash    *string
	ResetTokenExpires *time.Time

	// Role-keyed profile variant: at most one of these is non-nil,
	// selected by Role. Admin accounts carry neither.
	Customer *CustomerProfile
	Seller   *SellerProfile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerProfile carries the fields only meaningful for customers.
type CustomerProfile struct {
	LoyaltyPoints    int64
	CarbonSavedGrams int64
}

// SellerProfile carries the fields only meaningful for sellers.
type SellerProfile struct {
	BusinessName string
	BusinessType string
	Verified     bool
}

// IsLocked reports whether the lock window is currently in effect. Pure
// query; an expired lock is still present as data until the next failed
// attempt clears it (lazy expiry, no background sweep).
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}
