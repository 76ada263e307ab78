package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the same repos serve both the root store and transaction-scoped ones.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts { return &accountsRepo{db: s.db} }
func (s *Store) Products() store.Products { return &productsRepo{db: s.db} }
func (s *Store) Carts() store.Carts       { return &cartsRepo{db: s.db} }
func (s *Store) Orders() store.Orders     { return &ordersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Postgres error codes: 23505 unique_violation, 23514 check_violation.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return store.ErrAlreadyExists
		case "23514":
			return store.ErrConflict
		}
	}
	return err
}

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type accountRow struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Role              string
	IsActive          bool
	LoginAttempts     int
	LockUntil         sql.NullTime
	LastLogin         sql.NullTime
	ResetTokenHash    sql.NullString
	ResetTokenExpires sql.NullTime
	LoyaltyPoints     int64
	CarbonSavedGrams  int64
	BusinessName      sql.NullString
	BusinessType      sql.NullString
	SellerVerified    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func mapAccount(row accountRow) domain.Account {
	a := domain.Account{
		ID:                row.ID,
		Username:          row.Username,
		Email:             row.Email,
		PasswordHash:      row.PasswordHash,
		Role:              domain.Role(row.Role),
		IsActive:          row.IsActive,
		LoginAttempts:     row.LoginAttempts,
		LockUntil:         mapNullTimePtr(row.LockUntil),
		LastLogin:         mapNullTimePtr(row.LastLogin),
		ResetTokenHash:    mapNullStringPtr(row.ResetTokenHash),
		ResetTokenExpires: mapNullTimePtr(row.ResetTokenExpires),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}

	switch a.Role {
	case domain.RoleCustomer:
		a.Customer = &domain.CustomerProfile{
			LoyaltyPoints:    row.LoyaltyPoints,
			CarbonSavedGrams: row.CarbonSavedGrams,
		}
	case domain.RoleSeller:
		a.Seller = &domain.SellerProfile{
			BusinessName: row.BusinessName.String,
			BusinessType: row.BusinessType.String,
			Verified:     row.SellerVerified,
		}
	}
	return a
}
