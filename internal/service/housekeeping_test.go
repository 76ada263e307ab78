package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	f := newCommerceFixture(t)

	// Expired reset token on the customer.
	expired := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.store.Accounts().SetResetToken(ctx, f.customer.ID,
		cryptox.FingerprintToken("stale-token"), expired))

	// One fresh and one abandoned cart item.
	bottle := f.addProduct(t, "Steel Bottle", 49900, 1200, 10)
	brush := f.addProduct(t, "Bamboo Brush", 9900, 80, 10)
	require.NoError(t, f.carts.SetItem(ctx, f.customer.ID, bottle.ID, 1))

	old := time.Now().UTC().Add(-StaleCartAge - time.Hour)
	item, err := f.store.Carts().GetItem(ctx, f.customer.ID, bottle.ID)
	require.NoError(t, err)
	item.ProductID = brush.ID
	item.ID = item.ID + "b"
	item.CreatedAt = old
	item.UpdatedAt = old
	require.NoError(t, f.store.Carts().UpsertItem(ctx, item))

	hk := NewHousekeepingService(f.store, slog.Default(), time.Hour)
	hk.cleanup()

	// Reset token is gone.
	_, err = f.store.Accounts().GetAccountByResetToken(ctx,
		cryptox.FingerprintToken("stale-token"), expired.Add(-time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)

	// Only the fresh cart line survives.
	lines, err := f.store.Carts().ListItems(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, bottle.ID, lines[0].ProductID)

	// Start/Stop lifecycle shuts down cleanly.
	hk2 := NewHousekeepingService(f.store, slog.Default(), time.Hour)
	hk2.Start()
	hk2.Stop()
}
