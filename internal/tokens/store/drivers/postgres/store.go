package postgres

import (
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/sqldb"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store is the Postgres flavoured sqldb.Store.
type Store struct {
	*sqldb.Store
}

// NewStore opens dsn through pgx's database/sql adapter.
func NewStore(dsn string, cols store.Columns) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	var migrate sqldb.MigrateFunc
	if cols.IsDefault() {
		migrate = func(*sql.DB) error { return applyMigrations(dsn) }
	}

	inner, err := sqldb.New(db, sqldb.Postgres, cols, migrate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Store: inner}, nil
}
