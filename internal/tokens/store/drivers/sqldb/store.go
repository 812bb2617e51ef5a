package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
)

// MigrateFunc applies the engine's embedded migrations.
type MigrateFunc func(db *sql.DB) error

// Store is a database/sql backed store.Store shared by the sqlite and
// postgres drivers.
type Store struct {
	db      *sql.DB
	q       queries
	migrate MigrateFunc
}

// New wraps an open database. migrate may be nil when the schema is managed
// outside the service.
func New(db *sql.DB, d Dialect, cols store.Columns, migrate MigrateFunc) (*Store, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}
	return &Store{db: db, q: newQueries(d, cols), migrate: migrate}, nil
}

// DB exposes the pool for drivers and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: s.q}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (s *Store) Tokens() store.Tokens { return &tokensRepo{db: s.db, q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
