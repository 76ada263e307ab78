package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/idx"
)

var ErrInsufficientStock = errors.New("insufficient_stock")

// CartService owns the per-account staging area for orders. Quantities
// are absolute: setting a product already in the cart replaces its
// quantity rather than adding to it.
type CartService struct {
	Store store.Store
}

func (s *CartService) SetItem(ctx context.Context, accountID, productID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	product, err := s.Store.Products().GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if product.Stock < quantity {
		return ErrInsufficientStock
	}

	now := time.Now().UTC()
	return s.Store.Carts().UpsertItem(ctx, domain.CartItem{
		ID:        idx.New().String(),
		AccountID: accountID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get resolves the cart against the live catalogue and computes totals.
func (s *CartService) Get(ctx context.Context, accountID string) (domain.Cart, error) {
	lines, err := s.Store.Carts().ListItems(ctx, accountID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{Items: lines}
	for _, line := range lines {
		cart.TotalPaise += line.PricePaise * line.Quantity
		cart.TotalCarbonGrams += line.CarbonGrams * line.Quantity
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, accountID, productID string) error {
	err := s.Store.Carts().RemoveItem(ctx, accountID, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

func (s *CartService) Clear(ctx context.Context, accountID string) error {
	return s.Store.Carts().ClearCart(ctx, accountID)
}
