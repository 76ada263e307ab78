package service

import (
	"context"
	"testing"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/stretchr/testify/require"
)

type commerceFixture struct {
	auth     *AuthService
	products *ProductService
	carts    *CartService
	orders   *OrderService
	store    store.Store

	customer domain.Account
	seller   domain.Account
}

func newCommerceFixture(t *testing.T) *commerceFixture {
	t.Helper()
	ctx := context.Background()

	auth, st := newTestAuth(t)
	f := &commerceFixture{
		auth:     auth,
		products: &ProductService{Store: st},
		carts:    &CartService{Store: st},
		orders: &OrderService{
			Store:     st,
			PayeeVPA:  "ecobazaar@upi",
			PayeeName: "EcoBazaarX",
		},
		store: st,
	}

	f.customer = registerCustomer(t, auth, "alice", "alice@example.com", "hunter22")

	seller, err := auth.Register(ctx, RegisterParams{
		Username: "greenmart",
		Email:    "shop@greenmart.in",
		Password: "hunter22",
		Role:     "seller",
	})
	require.NoError(t, err)
	f.seller = seller

	return f
}

func (f *commerceFixture) addProduct(t *testing.T, name string, pricePaise, carbonGrams, stock int64) domain.Product {
	t.Helper()
	product, err := f.products.Create(context.Background(), f.seller.ID, ProductParams{
		Name:        name,
		Category:    domain.CategoryHome,
		PricePaise:  pricePaise,
		CarbonGrams: carbonGrams,
		Stock:       stock,
	})
	require.NoError(t, err)
	return product
}

func TestCart(t *testing.T) {
	ctx := context.Background()

	t.Run("totals follow quantity", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		brush := f.addProduct(t, "Bamboo Brush", 9900, 80, 10)

		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 2))
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, brush.ID, 1))

		cart, err := f.carts.Get(ctx, f.customer.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		require.Equal(t, int64(2*49900+9900), cart.TotalPaise)
		require.Equal(t, int64(2*1200+80), cart.TotalCarbonGrams)
	})

	t.Run("setting an item replaces its quantity", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)

		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 5))
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 2))

		cart, err := f.carts.Get(ctx, f.customer.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		require.Equal(t, int64(2), cart.Items[0].Quantity)
	})

	t.Run("rejects quantities beyond stock", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 3)

		err := f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 4)
		require.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("rejects unknown products", func(t *testing.T) {
		f := newCommerceFixture(t)
		err := f.carts.SetItem(ctx, f.customer.ID, "no-such-product", 1)
		require.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots cart into a pending order", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 3))

		order, err := f.orders.Checkout(ctx, f.customer.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrderPending, order.Status)
		require.Len(t, order.Items, 1)
		require.Equal(t, int64(3*49900), order.TotalPaise)

		// Stock consumed, cart emptied.
		stocked, err := f.products.Get(ctx, bottle.ID)
		require.NoError(t, err)
		require.Equal(t, int64(7), stocked.Stock)

		cart, err := f.carts.Get(ctx, f.customer.ID)
		require.NoError(t, err)
		require.Empty(t, cart.Items)
	})

	t.Run("empty cart cannot check out", func(t *testing.T) {
		f := newCommerceFixture(t)
		_, err := f.orders.Checkout(ctx, f.customer.ID)
		require.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("order price survives later catalogue edits", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 1))

		order, err := f.orders.Checkout(ctx, f.customer.ID)
		require.NoError(t, err)

		_, err = f.products.Update(ctx, f.seller.ID, domain.RoleSeller, bottle.ID, ProductParams{
			Name:       "Steel Bottle",
			Category:   domain.CategoryHome,
			PricePaise: 99900,
			Stock:      9,
		})
		require.NoError(t, err)

		fetched, err := f.orders.Get(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.NoError(t, err)
		require.Equal(t, int64(49900), fetched.TotalPaise)
		require.Equal(t, int64(49900), fetched.Items[0].PricePaise)
	})

	t.Run("orders are invisible to other customers", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 1))

		order, err := f.orders.Checkout(ctx, f.customer.ID)
		require.NoError(t, err)

		other := registerCustomer(t, f.auth, "mallory", "mallory@example.com", "hunter22")
		_, err = f.orders.Get(ctx, other.ID, domain.RoleCustomer, order.ID)
		require.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("listing scopes to the actor, admins see everything", func(t *testing.T) {
		f := newCommerceFixture(t)
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 1))
		_, err := f.orders.Checkout(ctx, f.customer.ID)
		require.NoError(t, err)

		other := registerCustomer(t, f.auth, "mallory", "mallory@example.com", "hunter22")
		require.NoError(t, f.carts.SetItem(ctx, other.ID, bottle.ID, 2))
		_, err = f.orders.Checkout(ctx, other.ID)
		require.NoError(t, err)

		own, err := f.orders.List(ctx, f.customer.ID, domain.RoleCustomer, 0, 0)
		require.NoError(t, err)
		require.Len(t, own, 1)
		require.Equal(t, f.customer.ID, own[0].AccountID)

		all, err := f.orders.List(ctx, "admin-id", domain.RoleAdmin, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})
}

func TestPayment(t *testing.T) {
	ctx := context.Background()

	checkout := func(t *testing.T, f *commerceFixture, qty int64) domain.Order {
		t.Helper()
		bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
		require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, qty))
		order, err := f.orders.Checkout(ctx, f.customer.ID)
		require.NoError(t, err)
		return order
	}

	t.Run("intent renders a upi deep link and qr image", func(t *testing.T) {
		f := newCommerceFixture(t)
		order := checkout(t, f, 2)

		intent, err := f.orders.Intent(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.NoError(t, err)
		require.Equal(t, order.ID, intent.OrderID)
		require.Contains(t, intent.UPIURI, "upi://pay?")
		require.Contains(t, intent.UPIURI, "pa=ecobazaar%40upi")
		require.Contains(t, intent.UPIURI, "am=998.00")
		require.Contains(t, intent.QRImageURL, "api.qrserver.com")
	})

	t.Run("confirmation pays once and credits the customer", func(t *testing.T) {
		f := newCommerceFixture(t)
		order := checkout(t, f, 2)

		paid, err := f.orders.ConfirmPayment(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrderPaid, paid.Status)
		require.NotNil(t, paid.PaidAt)

		account, err := f.store.Accounts().GetAccountByID(ctx, f.customer.ID)
		require.NoError(t, err)
		require.NotNil(t, account.Customer)
		require.Equal(t, order.TotalPaise/1000, account.Customer.LoyaltyPoints)
		require.Equal(t, order.TotalCarbonGrams, account.Customer.CarbonSavedGrams)

		// A second confirmation must not double-credit.
		_, err = f.orders.ConfirmPayment(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.ErrorIs(t, err, ErrOrderNotPayable)

		account, err = f.store.Accounts().GetAccountByID(ctx, f.customer.ID)
		require.NoError(t, err)
		require.Equal(t, order.TotalPaise/1000, account.Customer.LoyaltyPoints)
	})

	t.Run("paid orders refuse a new intent", func(t *testing.T) {
		f := newCommerceFixture(t)
		order := checkout(t, f, 1)

		_, err := f.orders.ConfirmPayment(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.NoError(t, err)

		_, err = f.orders.Intent(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.ErrorIs(t, err, ErrOrderNotPayable)
	})

	t.Run("cancel restores stock", func(t *testing.T) {
		f := newCommerceFixture(t)
		order := checkout(t, f, 3)

		require.NoError(t, f.orders.Cancel(ctx, f.customer.ID, domain.RoleCustomer, order.ID))

		fetched, err := f.orders.Get(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrderCancelled, fetched.Status)

		product, err := f.products.Get(ctx, order.Items[0].ProductID)
		require.NoError(t, err)
		require.Equal(t, int64(10), product.Stock)
	})
}

func TestSellerStats(t *testing.T) {
	ctx := context.Background()

	f := newCommerceFixture(t)
	bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
	f.addProduct(t, "Bamboo Brush", 9900, 80, 10)

	require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 2))
	order, err := f.orders.Checkout(ctx, f.customer.ID)
	require.NoError(t, err)

	// Pending orders don't count as sales yet.
	stats, err := f.products.Stats(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.ProductCount)
	require.Zero(t, stats.UnitsSold)

	_, err = f.orders.ConfirmPayment(ctx, f.customer.ID, domain.RoleCustomer, order.ID)
	require.NoError(t, err)

	stats, err = f.products.Stats(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.UnitsSold)
	require.Equal(t, int64(2*49900), stats.RevenuePaise)
	require.Equal(t, int64(2*1200), stats.CarbonSoldGrams)
}
