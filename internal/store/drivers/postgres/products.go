package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
)

type productsRepo struct {
	db dbtx
}

const productColumns = `id, seller_id, name, description, category, price_paise,
	carbon_grams, stock, featured, image_url, created_at, updated_at`

func scanProduct(row *sql.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category, &p.PricePaise,
		&p.CarbonGrams, &p.Stock, &p.Featured, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, mapNotFound(err)
	}
	return p, nil
}

func (r *productsRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, seller_id, name, description, category, price_paise,
			carbon_grams, stock, featured, image_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.SellerID, p.Name, p.Description, p.Category, p.PricePaise,
		p.CarbonGrams, p.Stock, p.Featured, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *productsRepo) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func filterClause(f domain.ProductFilter) (string, []any) {
	clauses := []string{"1 = 1"}
	var args []any

	add := func(condFmt string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(condFmt, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.SellerID != "" {
		add("seller_id = $%d", f.SellerID)
	}
	if f.Featured != nil {
		add("featured = $%d", *f.Featured)
	}
	if f.Search != "" {
		add("name ILIKE '%%' || $%d || '%%'", f.Search)
	}
	if f.MaxCarbonGrams > 0 {
		add("carbon_grams <= $%d", f.MaxCarbonGrams)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *productsRepo) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	where, args := filterClause(f)
	limitClause := fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+where+`
		ORDER BY created_at DESC
		`+limitClause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category, &p.PricePaise,
			&p.CarbonGrams, &p.Stock, &p.Featured, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productsRepo) CountProducts(ctx context.Context, f domain.ProductFilter) (int64, error) {
	where, args := filterClause(f)

	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&count)
	return count, err
}

func (r *productsRepo) UpdateProduct(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET
			name = $1, description = $2, category = $3, price_paise = $4,
			carbon_grams = $5, stock = $6, featured = $7, image_url = $8, updated_at = $9
		WHERE id = $10`,
		p.Name, p.Description, p.Category, p.PricePaise,
		p.CarbonGrams, p.Stock, p.Featured, p.ImageURL, p.UpdatedAt,
		p.ID,
	)
	return checkAffected(res, err)
}

func (r *productsRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return checkAffected(res, err)
}

// AdjustStock relies on the stock >= 0 CHECK constraint to reject
// oversells inside the same statement.
func (r *productsRepo) AdjustStock(ctx context.Context, id string, delta int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3`,
		delta, time.Now().UTC(), id)
	if err != nil {
		return mapConstraint(err)
	}
	return checkAffected(res, err)
}

func (r *productsRepo) SellerStats(ctx context.Context, sellerID string) (domain.SellerStats, error) {
	stats := domain.SellerStats{SellerID: sellerID}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE seller_id = $1`, sellerID).
		Scan(&stats.ProductCount)
	if err != nil {
		return domain.SellerStats{}, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(oi.quantity), 0),
			COALESCE(SUM(oi.price_paise * oi.quantity), 0),
			COALESCE(SUM(oi.carbon_grams * oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id AND o.status = 'paid'
		JOIN products p ON p.id = oi.product_id
		WHERE p.seller_id = $1`, sellerID).
		Scan(&stats.UnitsSold, &stats.RevenuePaise, &stats.CarbonSoldGrams)
	if err != nil {
		return domain.SellerStats{}, err
	}

	return stats, nil
}
