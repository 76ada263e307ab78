package service

import (
	"context"
	"testing"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestProductCatalogue(t *testing.T) {
	ctx := context.Background()

	t.Run("validates required fields", func(t *testing.T) {
		f := newCommerceFixture(t)

		_, err := f.products.Create(ctx, f.seller.ID, ProductParams{Category: domain.CategoryHome})
		require.ErrorIs(t, err, ErrValidation)

		_, err = f.products.Create(ctx, f.seller.ID, ProductParams{Name: "Bottle"})
		require.ErrorIs(t, err, ErrValidation)

		_, err = f.products.Create(ctx, f.seller.ID, ProductParams{
			Name:       "Bottle",
			Category:   domain.CategoryHome,
			PricePaise: -1,
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("filters by category and featured flag", func(t *testing.T) {
		f := newCommerceFixture(t)
		f.addProduct(t, "Steel Bottle", 49900, 1200, 10)

		brush, err := f.products.Create(ctx, f.seller.ID, ProductParams{
			Name:     "Bamboo Brush",
			Category: domain.CategoryPersonal,
			Stock:    5,
			Featured: true,
		})
		require.NoError(t, err)

		byCategory, total, err := f.products.List(ctx, domain.ProductFilter{Category: domain.CategoryPersonal})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		require.Len(t, byCategory, 1)
		require.Equal(t, brush.ID, byCategory[0].ID)

		featured := true
		byFeatured, _, err := f.products.List(ctx, domain.ProductFilter{Featured: &featured})
		require.NoError(t, err)
		require.Len(t, byFeatured, 1)
		require.Equal(t, brush.ID, byFeatured[0].ID)
	})

	t.Run("search matches name substrings", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		f.addProduct(t, "Bamboo Brush", 9900, 80, 10)

		results, _, err := f.products.List(ctx, domain.ProductFilter{Search: "Bottle"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Equal(t, bottle.ID, results[0].ID)
	})

	t.Run("caps the carbon footprint", func(t *testing.T) {
		f := newCommerceFixture(t)
		f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		brush := f.addProduct(t, "Bamboo Brush", 9900, 80, 10)

		results, _, err := f.products.List(ctx, domain.ProductFilter{MaxCarbonGrams: 100})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Equal(t, brush.ID, results[0].ID)
	})

	t.Run("sellers cannot edit each other's listings", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)

		rival, err := f.auth.Register(ctx, RegisterParams{
			Username: "rival",
			Email:    "rival@example.com",
			Password: "hunter22",
			Role:     "seller",
		})
		require.NoError(t, err)

		_, err = f.products.Update(ctx, rival.ID, domain.RoleSeller, bottle.ID, ProductParams{
			Name:     "Hijacked",
			Category: domain.CategoryHome,
		})
		require.ErrorIs(t, err, ErrForbidden)

		err = f.products.Delete(ctx, rival.ID, domain.RoleSeller, bottle.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin can edit any listing", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)

		updated, err := f.products.Update(ctx, "some-admin", domain.RoleAdmin, bottle.ID, ProductParams{
			Name:     "Steel Bottle XL",
			Category: domain.CategoryHome,
			Stock:    10,
		})
		require.NoError(t, err)
		require.Equal(t, "Steel Bottle XL", updated.Name)
	})
}

func TestUserAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("lists accounts by role", func(t *testing.T) {
		f := newCommerceFixture(t)
		users := &UserService{Store: f.store}

		sellers, total, err := users.List(ctx, "seller", 0, 0)
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		require.Len(t, sellers, 1)
		require.Equal(t, f.seller.ID, sellers[0].ID)

		all, total, err := users.List(ctx, "", 0, 0)
		require.NoError(t, err)
		require.Equal(t, int64(2), total)
		require.Len(t, all, 2)
	})

	t.Run("verifies sellers only", func(t *testing.T) {
		f := newCommerceFixture(t)
		users := &UserService{Store: f.store}

		require.NoError(t, users.VerifySeller(ctx, f.seller.ID, true))

		verified, err := users.GetByID(ctx, f.seller.ID)
		require.NoError(t, err)
		require.NotNil(t, verified.Seller)
		require.True(t, verified.Seller.Verified)

		err = users.VerifySeller(ctx, f.customer.ID, true)
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("deactivation round trip", func(t *testing.T) {
		f := newCommerceFixture(t)
		users := &UserService{Store: f.store}

		require.NoError(t, users.SetActive(ctx, f.customer.ID, false))
		_, _, err := f.auth.Login(ctx, "alice@example.com", "hunter22")
		require.ErrorIs(t, err, ErrAccountDeactivated)

		require.NoError(t, users.SetActive(ctx, f.customer.ID, true))
		_, _, err = f.auth.Login(ctx, "alice@example.com", "hunter22")
		require.NoError(t, err)
	})
}
