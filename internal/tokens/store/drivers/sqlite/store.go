package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/sqldb"
	_ "modernc.org/sqlite"
)

// Store is the SQLite flavoured sqldb.Store.
type Store struct {
	*sqldb.Store
}

// NewStore opens dsn with the modernc driver. Columns other than the
// defaults are expected to exist already; migrations only manage the
// default table.
func NewStore(dsn string, cols store.Columns) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer at a time, and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	var migrate sqldb.MigrateFunc
	if cols.IsDefault() {
		migrate = applyMigrations
	}

	inner, err := sqldb.New(db, sqldb.SQLite, cols, migrate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Store: inner}, nil
}
