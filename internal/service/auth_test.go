package service

import (
	"context"
	"testing"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(t)

	t.Run("creates customer with normalised email", func(t *testing.T) {
		account, err := auth.Register(ctx, RegisterParams{
			Username: "alice",
			Email:    "Alice@Example.COM",
			Password: "hunter22",
		})
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", account.Email)
		require.Equal(t, domain.RoleCustomer, account.Role)
		require.NotNil(t, account.Customer)
		require.Nil(t, account.Seller)
		require.True(t, account.IsActive)
	})

	t.Run("unknown role collapses to customer", func(t *testing.T) {
		account, err := auth.Register(ctx, RegisterParams{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "hunter22",
			Role:     "superuser",
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleCustomer, account.Role)
	})

	t.Run("seller gets a business profile", func(t *testing.T) {
		account, err := auth.Register(ctx, RegisterParams{
			Username:     "greenmart",
			Email:        "shop@greenmart.in",
			Password:     "hunter22",
			Role:         "seller",
			BusinessName: "GreenMart",
			BusinessType: "grocery",
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleSeller, account.Role)
		require.NotNil(t, account.Seller)
		require.Equal(t, "GreenMart", account.Seller.BusinessName)
		require.False(t, account.Seller.Verified)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := auth.Register(ctx, RegisterParams{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "tiny",
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects short usernames", func(t *testing.T) {
		_, err := auth.Register(ctx, RegisterParams{
			Username: "cz",
			Email:    "cz@example.com",
			Password: "hunter22",
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := auth.Register(ctx, RegisterParams{
			Username: "alice2",
			Email:    "ALICE@example.com",
			Password: "hunter22",
		})
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		_, err := auth.Register(ctx, RegisterParams{
			Username: "alice",
			Email:    "other@example.com",
			Password: "hunter22",
		})
		require.ErrorIs(t, err, ErrDuplicateUsername)
	})
}

func registerCustomer(t *testing.T, auth *AuthService, username, email, password string) domain.Account {
	t.Helper()
	account, err := auth.Register(context.Background(), RegisterParams{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return account
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns account and token", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		account, token, err := auth.Login(ctx, "alice@example.com", "hunter22")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotNil(t, account.LastLogin)
		require.Zero(t, account.LoginAttempts)
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		_, token, err := auth.Login(ctx, "ALICE@Example.Com", "hunter22")
		require.NoError(t, err)
		require.NotEmpty(t, token)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		_, _, unknownErr := auth.Login(ctx, "nobody@example.com", "hunter22")
		_, _, wrongErr := auth.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	})

	t.Run("deactivated account refuses correct password", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")
		require.NoError(t, st.Accounts().SetActive(ctx, account.ID, false))

		_, _, err := auth.Login(ctx, "alice@example.com", "hunter22")
		require.ErrorIs(t, err, ErrAccountDeactivated)
	})

	t.Run("deactivated account never accrues failed attempts", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")
		require.NoError(t, st.Accounts().SetActive(ctx, account.ID, false))

		// Even a wrong password reports deactivation, and repeated
		// failures must not lock the account out past reactivation.
		for range domain.MaxLoginAttempts + 1 {
			_, _, err := auth.Login(ctx, "alice@example.com", "wrong-password")
			require.ErrorIs(t, err, ErrAccountDeactivated)
		}

		stored, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Zero(t, stored.LoginAttempts)
		require.Nil(t, stored.LockUntil)

		require.NoError(t, st.Accounts().SetActive(ctx, account.ID, true))
		_, _, err = auth.Login(ctx, "alice@example.com", "hunter22")
		require.NoError(t, err)
	})

	t.Run("success clears the failure counter", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		for range 3 {
			_, _, err := auth.Login(ctx, "alice@example.com", "wrong-password")
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}

		_, _, err := auth.Login(ctx, "alice@example.com", "hunter22")
		require.NoError(t, err)

		stored, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Zero(t, stored.LoginAttempts)
		require.Nil(t, stored.LockUntil)
	})
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()

	t.Run("locks on the fifth consecutive failure", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		for i := range domain.MaxLoginAttempts - 1 {
			_, _, err := auth.Login(ctx, "alice@example.com", "wrong-password")
			require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d must not lock", i+1)
		}

		stored, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MaxLoginAttempts-1, stored.LoginAttempts)
		require.Nil(t, stored.LockUntil)

		_, _, err = auth.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrAccountLocked)

		stored, err = st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LockUntil)
		require.WithinDuration(t, time.Now().Add(domain.LockDuration), *stored.LockUntil, time.Minute)
	})

	t.Run("lock refuses even the correct password", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		for range domain.MaxLoginAttempts {
			auth.Login(ctx, "alice@example.com", "wrong-password")
		}

		_, _, err := auth.Login(ctx, "alice@example.com", "hunter22")
		require.ErrorIs(t, err, ErrAccountLocked)
	})

	t.Run("failures during an active lock do not extend it", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		for range domain.MaxLoginAttempts {
			auth.Login(ctx, "alice@example.com", "wrong-password")
		}

		locked, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, locked.LockUntil)

		_, _, err = auth.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrAccountLocked)

		after, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, after.LockUntil)
		require.True(t, locked.LockUntil.Equal(*after.LockUntil), "lock expiry must not move")
	})

	t.Run("failure after lock expiry restarts the counter at one", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		now := time.Now().UTC()
		for range domain.MaxLoginAttempts {
			_, _, err := st.Accounts().RecordFailedLogin(ctx, account.ID, now)
			require.NoError(t, err)
		}

		stored, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LockUntil)

		// A failure observed after the lock window has passed.
		afterExpiry := now.Add(domain.LockDuration + time.Minute)
		attempts, lockUntil, err := st.Accounts().RecordFailedLogin(ctx, account.ID, afterExpiry)
		require.NoError(t, err)
		require.Equal(t, 1, attempts)
		require.Nil(t, lockUntil)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("issued token rotates the password once", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		token, err := auth.StartPasswordReset(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.NoError(t, auth.ConfirmPasswordReset(ctx, token, "brand-new-pass"))

		_, _, err = auth.Login(ctx, "alice@example.com", "hunter22")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = auth.Login(ctx, "alice@example.com", "brand-new-pass")
		require.NoError(t, err)

		// Second redemption of the same token must fail.
		err = auth.ConfirmPasswordReset(ctx, token, "another-pass")
		require.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("unknown email surfaces not found for the handler to mask", func(t *testing.T) {
		auth, _ := newTestAuth(t)

		_, err := auth.StartPasswordReset(ctx, "ghost@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		err := auth.ConfirmPasswordReset(ctx, "not-a-real-token", "brand-new-pass")
		require.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("redeeming a reset unlocks a locked account", func(t *testing.T) {
		auth, st := newTestAuth(t)
		account := registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		for range domain.MaxLoginAttempts {
			_, _, err := auth.Login(ctx, "alice@example.com", "wrong-password")
			require.Error(t, err)
		}
		_, _, err := auth.Login(ctx, "alice@example.com", "hunter22")
		require.ErrorIs(t, err, ErrAccountLocked)

		token, err := auth.StartPasswordReset(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NoError(t, auth.ConfirmPasswordReset(ctx, token, "brand-new-pass"))

		stored, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Zero(t, stored.LoginAttempts)
		require.Nil(t, stored.LockUntil)

		_, _, err = auth.Login(ctx, "alice@example.com", "brand-new-pass")
		require.NoError(t, err)
	})

	t.Run("short replacement password is rejected", func(t *testing.T) {
		auth, _ := newTestAuth(t)
		registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

		token, err := auth.StartPasswordReset(ctx, "alice@example.com")
		require.NoError(t, err)

		err = auth.ConfirmPasswordReset(ctx, token, "tiny")
		require.ErrorIs(t, err, ErrValidation)
	})
}
