package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	_ "modernc.org/sqlite"
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
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite serialises writers anyway, and an in-memory database only
	// exists on the connection that created it.
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
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

// mapConstraint translates sqlite unique/PK violations into
// store.ErrAlreadyExists. modernc.org/sqlite does not export typed
// constraint errors, so this matches the message.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

// checkAffected collapses a zero-row update into store.ErrNotFound.
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

// accountRow is the flat scan target for the accounts table; profile
// columns are hoisted into the role-keyed variant on the way out.
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
