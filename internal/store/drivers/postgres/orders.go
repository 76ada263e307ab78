package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
)

type ordersRepo struct {
	db dbtx
}

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, account_id, status, total_paise, total_carbon_grams,
			paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.AccountID, string(o.Status), o.TotalPaise, o.TotalCarbonGrams,
		mapOptionalTime(o.PaidAt), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, item := range o.Items {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, price_paise,
				carbon_grams, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.Name, item.PricePaise,
			item.CarbonGrams, item.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ordersRepo) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	var (
		o      domain.Order
		status string
		paidAt sql.NullTime
	)

	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, status, total_paise, total_carbon_grams,
			paid_at, created_at, updated_at
		FROM orders WHERE id = $1`, id)

	err := row.Scan(&o.ID, &o.AccountID, &status, &o.TotalPaise, &o.TotalCarbonGrams,
		&paidAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	o.Status = domain.OrderStatus(status)
	o.PaidAt = mapNullTimePtr(paidAt)

	items, err := r.listItems(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *ordersRepo) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price_paise, carbon_grams, quantity
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.PricePaise, &item.CarbonGrams, &item.Quantity); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *ordersRepo) ListOrdersByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, account_id, status, total_paise, total_carbon_grams,
			paid_at, created_at, updated_at
		FROM orders
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
}

func (r *ordersRepo) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, account_id, status, total_paise, total_carbon_grams,
			paid_at, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *ordersRepo) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var (
			o      domain.Order
			status string
			paidAt sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.AccountID, &status, &o.TotalPaise,
			&o.TotalCarbonGrams, &paidAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		o.PaidAt = mapNullTimePtr(paidAt)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.listItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// MarkPaid only fires on a pending order so a second confirmation or a
// race with cancellation cannot double-apply.
func (r *ordersRepo) MarkPaid(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = 'paid', paid_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'pending'`,
		now, id)
	return checkAffected(res, err)
}

func (r *ordersRepo) MarkCancelled(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = 'cancelled', updated_at = $1
		WHERE id = $2 AND status = 'pending'`,
		now, id)
	return checkAffected(res, err)
}
