package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, username, email, password_hash, role, is_active,
	login_attempts, lock_until, last_login, reset_token_hash, reset_token_expires,
	loyalty_points, carbon_saved_grams, business_name, business_type, seller_verified,
	created_at, updated_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var r accountRow
	err := row.Scan(
		&r.ID, &r.Username, &r.Email, &r.PasswordHash, &r.Role, &r.IsActive,
		&r.LoginAttempts, &r.LockUntil, &r.LastLogin, &r.ResetTokenHash, &r.ResetTokenExpires,
		&r.LoyaltyPoints, &r.CarbonSavedGrams, &r.BusinessName, &r.BusinessType, &r.SellerVerified,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(r), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	var (
		loyaltyPoints  int64
		carbonSaved    int64
		businessName   sql.NullString
		businessType   sql.NullString
		sellerVerified bool
	)
	if a.Customer != nil {
		loyaltyPoints = a.Customer.LoyaltyPoints
		carbonSaved = a.Customer.CarbonSavedGrams
	}
	if a.Seller != nil {
		businessName = sql.NullString{String: a.Seller.BusinessName, Valid: true}
		businessType = sql.NullString{String: a.Seller.BusinessType, Valid: true}
		sellerVerified = a.Seller.Verified
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, username, email, password_hash, role, is_active,
			login_attempts, lock_until, last_login, reset_token_hash, reset_token_expires,
			loyalty_points, carbon_saved_grams, business_name, business_type, seller_verified,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, string(a.Role), a.IsActive,
		a.LoginAttempts, mapOptionalTime(a.LockUntil), mapOptionalTime(a.LastLogin),
		mapOptionalString(a.ResetTokenHash), mapOptionalTime(a.ResetTokenExpires),
		loyaltyPoints, carbonSaved, businessName, businessType, sellerVerified,
		a.CreatedAt, a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = lower(?)`, email))
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username))
}

// RecordFailedLogin applies all lockout transitions in one conditional
// update so concurrent failures cannot race a read-modify-write cycle.
// Branch order matters: an expired lock resets before the threshold is
// considered, and an active lock is left exactly as it is.
func (r *accountsRepo) RecordFailedLogin(ctx context.Context, id string, now time.Time) (int, *time.Time, error) {
	lockExpiry := now.Add(domain.LockDuration)

	row := r.db.QueryRowContext(ctx, `
		UPDATE accounts SET
			login_attempts = CASE
				WHEN lock_until IS NOT NULL AND lock_until <= ? THEN 1
				ELSE login_attempts + 1
			END,
			lock_until = CASE
				WHEN lock_until IS NOT NULL AND lock_until <= ? THEN NULL
				WHEN lock_until IS NOT NULL THEN lock_until
				WHEN login_attempts + 1 >= ? THEN ?
				ELSE NULL
			END,
			updated_at = ?
		WHERE id = ?
		RETURNING login_attempts, lock_until`,
		now, now, domain.MaxLoginAttempts, lockExpiry, now, id,
	)

	var (
		attempts  int
		lockUntil sql.NullTime
	)
	if err := row.Scan(&attempts, &lockUntil); err != nil {
		return 0, nil, mapNotFound(err)
	}
	return attempts, mapNullTimePtr(lockUntil), nil
}

func (r *accountsRepo) RecordSuccessfulLogin(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			login_attempts = 0,
			lock_until = NULL,
			last_login = ?,
			updated_at = ?
		WHERE id = ?`,
		now, now, id,
	)
	return err
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			password_hash = ?,
			login_attempts = 0,
			lock_until = NULL,
			updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), id)
	return checkAffected(res, err)
}

func (r *accountsRepo) SetResetToken(ctx context.Context, id string, tokenHash string, expires time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			reset_token_hash = ?,
			reset_token_expires = ?,
			updated_at = ?
		WHERE id = ?`,
		tokenHash, expires, time.Now().UTC(), id)
	return checkAffected(res, err)
}

func (r *accountsRepo) GetAccountByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE reset_token_hash = ? AND reset_token_expires > ?`,
		tokenHash, now))
}

func (r *accountsRepo) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			reset_token_hash = NULL,
			reset_token_expires = NULL,
			updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

func (r *accountsRepo) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			reset_token_hash = NULL,
			reset_token_expires = NULL
		WHERE reset_token_expires IS NOT NULL AND reset_token_expires <= ?`,
		now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id)
	return checkAffected(res, err)
}

func (r *accountsRepo) ListAccounts(ctx context.Context, role string, limit, offset int) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE (? = '' OR role = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		role, role, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		var rec accountRow
		if err := rows.Scan(
			&rec.ID, &rec.Username, &rec.Email, &rec.PasswordHash, &rec.Role, &rec.IsActive,
			&rec.LoginAttempts, &rec.LockUntil, &rec.LastLogin, &rec.ResetTokenHash, &rec.ResetTokenExpires,
			&rec.LoyaltyPoints, &rec.CarbonSavedGrams, &rec.BusinessName, &rec.BusinessType, &rec.SellerVerified,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, mapAccount(rec))
	}
	return out, rows.Err()
}

func (r *accountsRepo) CountAccounts(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE (? = '' OR role = ?)`,
		role, role).Scan(&count)
	return count, err
}

func (r *accountsRepo) SellerCounts(ctx context.Context) (total, verified, active int64, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN seller_verified THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0)
		FROM accounts WHERE role = 'seller'`).
		Scan(&total, &verified, &active)
	return total, verified, active, err
}

func (r *accountsRepo) SetSellerVerified(ctx context.Context, id string, verified bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET seller_verified = ?, updated_at = ?
		WHERE id = ? AND role = 'seller'`,
		verified, time.Now().UTC(), id)
	return checkAffected(res, err)
}

func (r *accountsRepo) CreditCustomer(ctx context.Context, id string, points, carbonGrams int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			loyalty_points = loyalty_points + ?,
			carbon_saved_grams = carbon_saved_grams + ?,
			updated_at = ?
		WHERE id = ? AND role = 'customer'`,
		points, carbonGrams, time.Now().UTC(), id)
	return err
}
