package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Tokens is exposed as a sub-repository so the same code runs
// against the root store and a transaction.
type Store interface {
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Tokens is the persisted refresh token table.
type Tokens interface {
	// LockAccount serialises writers for one account until the enclosing
	// transaction ends. Engines that already serialise writers treat it as
	// a no-op.
	LockAccount(ctx context.Context, accountID string) error

	// ListAccountTokens returns an account's rows in ascending id order.
	ListAccountTokens(ctx context.Context, accountID string) ([]domain.TokenRecord, error)

	// CountAccountTokens returns how many rows an account has.
	CountAccountTokens(ctx context.Context, accountID string) (int, error)

	// CreateToken inserts a row and returns the id assigned by the store.
	CreateToken(ctx context.Context, rec domain.TokenRecord) (int64, error)

	// UpdateToken swaps the token text of an existing row.
	// Returns ErrNotFound when no row has that id.
	UpdateToken(ctx context.Context, id int64, token string) error

	// DeleteTokens removes rows by id and reports how many went away.
	DeleteTokens(ctx context.Context, ids ...int64) (int64, error)

	// DeleteAccountTokens removes every row for an account.
	DeleteAccountTokens(ctx context.Context, accountID string) (int64, error)

	// ListTokens pages through all rows with id > afterID, ascending.
	ListTokens(ctx context.Context, afterID int64, limit int) ([]domain.TokenRecord, error)
}
