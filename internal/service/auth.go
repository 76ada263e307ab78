package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/cryptox"
	"github.com/ecobazaarx/ecobazaar/pkg/idx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

const (
	// MinUsernameLength is the minimum accepted username length.
	MinUsernameLength = 3

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// ResetTokenTTL is how long an issued password reset token stays
	// redeemable.
	ResetTokenTTL = 10 * time.Minute
)

var (
	ErrValidation         = errors.New("validation_failed")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountLocked      = errors.New("account_locked")
	ErrAccountDeactivated = errors.New("account_deactivated")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrDuplicateUsername  = errors.New("duplicate_username")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
)

// AuthService owns account registration, the login state machine, and the
// password reset flow.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// RegisterParams carries the registration input after transport decoding.
type RegisterParams struct {
	Username     string
	Email        string
	Password     string
	Role         string
	BusinessName string
	BusinessType string
}

// Register creates a new account. Unknown roles collapse to customer, the
// email is normalised to lowercase, and the profile variant matching the
// final role is attached.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.Account, error) {
	username := strings.TrimSpace(p.Username)
	email := strings.ToLower(strings.TrimSpace(p.Email))

	if len(username) < MinUsernameLength {
		return domain.Account{}, fmt.Errorf("%w: username must be at least %d characters", ErrValidation, MinUsernameLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Account{}, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(p.Password) < MinPasswordLength {
		return domain.Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	role := domain.ParseRole(p.Role)

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch role {
	case domain.RoleCustomer:
		account.Customer = &domain.CustomerProfile{}
	case domain.RoleSeller:
		account.Seller = &domain.SellerProfile{
			BusinessName: strings.TrimSpace(p.BusinessName),
			BusinessType: strings.TrimSpace(p.BusinessType),
		}
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, s.classifyDuplicate(ctx, username, email)
		}
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("role", string(role)),
	)
	return account, nil
}

// classifyDuplicate turns a unique violation into the more specific
// duplicate error by probing which column collided.
func (s *AuthService) classifyDuplicate(ctx context.Context, username, email string) error {
	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	}
	if _, err := s.Store.Accounts().GetAccountByUsername(ctx, username); err == nil {
		return ErrDuplicateUsername
	}
	return store.ErrAlreadyExists
}

// Login runs the credential check and lockout state machine:
//
//  1. unknown email reports the same error as a bad password
//  2. an active lock refuses authentication before the password is even
//     checked, so a correct guess leaks nothing while locked
//  3. a deactivated account refuses login before the credential check,
//     so it never accrues failed attempts or a lock
//  4. a failed check increments the consecutive-failure counter; the
//     fifth failure opens a two hour lock
//  5. success resets the counter and stamps last_login
//
// Lock expiry is lazy: nothing clears an expired lock until the next
// failed attempt resets the counter to 1.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Account, string, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, "", ErrInvalidCredentials
		}
		return domain.Account{}, "", err
	}

	if account.IsLocked(now) {
		l.Info("login refused, account locked", slog.String("account_id", account.ID))
		return domain.Account{}, "", ErrAccountLocked
	}

	if !account.IsActive {
		return domain.Account{}, "", ErrAccountDeactivated
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Account{}, "", err
		}

		attempts, lockUntil, ferr := s.Store.Accounts().RecordFailedLogin(ctx, account.ID, now)
		if ferr != nil {
			return domain.Account{}, "", ferr
		}
		if lockUntil != nil && lockUntil.After(now) {
			l.Info("account locked after repeated failures",
				slog.String("account_id", account.ID),
				slog.Int("attempts", attempts),
			)
			return domain.Account{}, "", ErrAccountLocked
		}
		return domain.Account{}, "", ErrInvalidCredentials
	}

	if err := s.Store.Accounts().RecordSuccessfulLogin(ctx, account.ID, now); err != nil {
		return domain.Account{}, "", err
	}
	account.LoginAttempts = 0
	account.LockUntil = nil
	account.LastLogin = &now

	token, err := s.Tokens.Mint(account, now)
	if err != nil {
		return domain.Account{}, "", err
	}

	l.Info("login succeeded", slog.String("account_id", account.ID))
	return account, token, nil
}

// StartPasswordReset issues a single-use reset token for the account
// holding the given email. The caller is responsible for not revealing
// whether the email exists; a missing account surfaces as
// store.ErrNotFound so the transport layer can mask it.
func (s *AuthService) StartPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	expires := time.Now().UTC().Add(ResetTokenTTL)
	if err := s.Store.Accounts().SetResetToken(ctx, account.ID, cryptox.FingerprintToken(token), expires); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("password reset issued", slog.String("account_id", account.ID))
	return token, nil
}

// ConfirmPasswordReset redeems a reset token and installs the new
// password, clearing any lockout along with the token. An expired or
// unknown token is indistinguishable from a spent one.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	now := time.Now().UTC()
	fingerprint := cryptox.FingerprintToken(token)

	account, err := s.Store.Accounts().GetAccountByResetToken(ctx, fingerprint, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdatePasswordHash(ctx, account.ID, hash); err != nil {
			return err
		}
		return tx.Accounts().ClearResetToken(ctx, account.ID)
	})
}
