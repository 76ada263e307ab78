package service

import (
	"context"
	"errors"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
)

var ErrAccountNotFound = errors.New("account_not_found")

// UserService covers account lookups and the admin surface.
type UserService struct {
	Store store.Store
}

// GetByID fetches an account by id.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

// List pages through accounts, optionally restricted to one role.
func (s *UserService) List(ctx context.Context, role string, limit, offset int) ([]domain.Account, int64, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if role != "" {
		role = string(domain.ParseRole(role))
	}

	accounts, err := s.Store.Accounts().ListAccounts(ctx, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Accounts().CountAccounts(ctx, role)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// SetActive activates or deactivates an account. A deactivated account
// keeps its data but refuses login.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	err := s.Store.Accounts().SetActive(ctx, id, active)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// SellerOverview reports population-level seller counts for the admin
// dashboard.
func (s *UserService) SellerOverview(ctx context.Context) (total, verified, active int64, err error) {
	return s.Store.Accounts().SellerCounts(ctx)
}

// VerifySeller marks a seller's business profile as verified. Fails for
// accounts that are not sellers.
func (s *UserService) VerifySeller(ctx context.Context, id string, verified bool) error {
	err := s.Store.Accounts().SetSellerVerified(ctx, id, verified)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}
