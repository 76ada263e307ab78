package store

import (
	"context"
	"errors"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrConflict      = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and to stop callers from accidentally opening
// transactions within transactions.
type Store interface {
	Accounts() Accounts
	Products() Products
	Carts() Carts
	Orders() Orders

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// CreateAccount inserts a new account (id provided by app via ULID).
	// Duplicate email or username maps to ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively; emails are stored
	// lowercased but lookups fold regardless.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// RecordFailedLogin applies the consecutive-failure bookkeeping as a
	// single conditional update: an expired lock resets the counter to 1
	// and clears the lock; otherwise the counter increments and, on
	// reaching the threshold of an unlocked account, a fresh lock window
	// opens. An already-active lock is left untouched. Returns the
	// post-update counter and lock expiry.
	RecordFailedLogin(ctx context.Context, id string, now time.Time) (attempts int, lockUntil *time.Time, err error)

	// RecordSuccessfulLogin clears the failure counter and lock and stamps
	// last_login.
	RecordSuccessfulLogin(ctx context.Context, id string, now time.Time) error

	// UpdatePasswordHash installs a new hash and resets the lockout
	// state; a redeemed password reset unlocks the account.
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error

	// SetResetToken stores the fingerprint and expiry of an issued
	// password reset token, replacing any previous one.
	SetResetToken(ctx context.Context, id string, tokenHash string, expires time.Time) error

	// GetAccountByResetToken finds the account holding an unexpired reset
	// token with the given fingerprint.
	GetAccountByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.Account, error)

	// ClearResetToken removes the stored reset token, spent or not.
	ClearResetToken(ctx context.Context, id string) error

	// PurgeExpiredResetTokens clears reset tokens whose expiry has passed.
	// Returns the number of accounts touched.
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	SetActive(ctx context.Context, id string, active bool) error

	// ListAccounts pages through accounts, optionally filtered by role.
	ListAccounts(ctx context.Context, role string, limit, offset int) ([]domain.Account, error)

	CountAccounts(ctx context.Context, role string) (int64, error)

	// SellerCounts returns population-level seller figures for the admin
	// dashboard.
	SellerCounts(ctx context.Context) (total, verified, active int64, err error)

	// SetSellerVerified flips the verified flag on a seller profile.
	SetSellerVerified(ctx context.Context, id string, verified bool) error

	// CreditCustomer adds loyalty points and saved carbon to a customer
	// profile. No-op counts as success for non-customer accounts.
	CreditCustomer(ctx context.Context, id string, points, carbonGrams int64) error
}

type Products interface {
	CreateProduct(ctx context.Context, p domain.Product) error

	GetProductByID(ctx context.Context, id string) (domain.Product, error)

	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)

	CountProducts(ctx context.Context, f domain.ProductFilter) (int64, error)

	UpdateProduct(ctx context.Context, p domain.Product) error

	DeleteProduct(ctx context.Context, id string) error

	// AdjustStock moves stock by delta (negative to consume). Returns
	// ErrConflict when the adjustment would drive stock negative.
	AdjustStock(ctx context.Context, id string, delta int64) error

	// SellerStats aggregates catalogue and sales figures for one seller.
	SellerStats(ctx context.Context, sellerID string) (domain.SellerStats, error)
}

type Carts interface {
	// UpsertItem sets the quantity for a product in an account's cart,
	// inserting the row if absent.
	UpsertItem(ctx context.Context, item domain.CartItem) error

	GetItem(ctx context.Context, accountID, productID string) (domain.CartItem, error)

	// ListItems resolves the cart against the catalogue.
	ListItems(ctx context.Context, accountID string) ([]domain.CartLine, error)

	RemoveItem(ctx context.Context, accountID, productID string) error

	// ClearCart empties an account's cart (after checkout).
	ClearCart(ctx context.Context, accountID string) error

	// PurgeStaleItems removes cart rows untouched since the cutoff.
	// Returns the number of rows removed.
	PurgeStaleItems(ctx context.Context, cutoff time.Time) (int64, error)
}

type Orders interface {
	// CreateOrder inserts the order and its item snapshots.
	CreateOrder(ctx context.Context, o domain.Order) error

	GetOrderByID(ctx context.Context, id string) (domain.Order, error)

	ListOrdersByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Order, error)

	// ListOrders pages through every account's orders, newest first.
	ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error)

	// MarkPaid transitions pending -> paid, stamping paid_at. Returns
	// ErrNotFound if the order is absent or not pending (single
	// transition, idempotence rejected).
	MarkPaid(ctx context.Context, id string, now time.Time) error

	// MarkCancelled transitions pending -> cancelled.
	MarkCancelled(ctx context.Context, id string, now time.Time) error
}
