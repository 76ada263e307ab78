package sqlite

import (
	"context"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
)

type cartsRepo struct {
	db dbtx
}

func (r *cartsRepo) UpsertItem(ctx context.Context, item domain.CartItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, account_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, product_id) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at`,
		item.ID, item.AccountID, item.ProductID, item.Quantity,
		item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (r *cartsRepo) GetItem(ctx context.Context, accountID, productID string) (domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE account_id = ? AND product_id = ?`,
		accountID, productID).
		Scan(&item.ID, &item.AccountID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.CartItem{}, mapNotFound(err)
	}
	return item, nil
}

func (r *cartsRepo) ListItems(ctx context.Context, accountID string) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.price_paise, p.carbon_grams,
			ci.quantity, p.image_url
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.account_id = ?
		ORDER BY ci.created_at`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.ProductID, &line.Name,
			&line.PricePaise, &line.CarbonGrams, &line.Quantity, &line.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *cartsRepo) RemoveItem(ctx context.Context, accountID, productID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE account_id = ? AND product_id = ?`,
		accountID, productID)
	return checkAffected(res, err)
}

func (r *cartsRepo) ClearCart(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE account_id = ?`, accountID)
	return err
}

func (r *cartsRepo) PurgeStaleItems(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE updated_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
