package sqldb_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/sqldb"
)

func newMockStore(t *testing.T, d sqldb.Dialect) (*sqldb.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := sqldb.New(db, d, store.DefaultColumns(), nil)
	require.NoError(t, err)
	return s, mock
}

func TestNew_RejectsBadColumns(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := store.DefaultColumns()
	cols.Token = "token; DROP TABLE x"
	_, err = sqldb.New(db, sqldb.SQLite, cols, nil)
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t, sqldb.Postgres)
	ctx := context.Background()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO jwt_tokens (account, token, algorithm, decoder) VALUES ($1, $2, $3, $4) RETURNING kid`)).
		WithArgs("acct", "tok", "HS256", "ZGVj").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tokens().CreateToken(ctx, domain.TokenRecord{
			AccountID: "acct", Token: "tok", Algorithm: "HS256", Decoder: "ZGVj",
		})
		return err
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	s, mock := newMockStore(t, sqldb.Postgres)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("acct").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO jwt_tokens`)).
		WillReturnRows(sqlmock.NewRows([]string{"kid"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jwt_tokens SET token = $1 WHERE kid = $2`)).
		WithArgs("final", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		repo := tx.Tokens()
		if err := repo.LockAccount(ctx, "acct"); err != nil {
			return err
		}
		id, err := repo.CreateToken(ctx, domain.TokenRecord{AccountID: "acct", Token: "tmp", Algorithm: "HS256", Decoder: "x"})
		if err != nil {
			return err
		}
		return repo.UpdateToken(ctx, id, "final")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxStore_NestedTxRefused(t *testing.T) {
	s, mock := newMockStore(t, sqldb.SQLite)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := s.Tx(ctx)
	require.NoError(t, err)

	_, err = tx.Tx(ctx)
	assert.Error(t, err)
	assert.Error(t, tx.WithTx(ctx, func(store.Tx) error { return nil }))

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokens_UpdateMissingRow(t *testing.T) {
	s, mock := newMockStore(t, sqldb.SQLite)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jwt_tokens SET token = ? WHERE kid = ?`)).
		WithArgs("tok", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Tokens().UpdateToken(context.Background(), 99, "tok")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokens_DeleteTokensBuildsInList(t *testing.T) {
	s, mock := newMockStore(t, sqldb.Postgres)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM jwt_tokens WHERE kid IN ($1, $2, $3)`)).
		WithArgs(int64(1), int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.Tokens().DeleteTokens(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = s.Tokens().DeleteTokens(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokens_LockAccountOutsideTxIsNoop(t *testing.T) {
	s, mock := newMockStore(t, sqldb.Postgres)

	require.NoError(t, s.Tokens().LockAccount(context.Background(), "acct"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokens_CustomColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := store.Columns{Table: "auth.jwt", ID: "id", Account: "acc", Token: "tok", Algorithm: "alg", Decoder: "dec"}
	s, err := sqldb.New(db, sqldb.SQLite, cols, nil)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, acc, tok, alg, dec FROM auth.jwt WHERE acc = ? ORDER BY id`)).
		WithArgs("acct").
		WillReturnRows(sqlmock.NewRows([]string{"id", "acc", "tok", "alg", "dec"}).
			AddRow(int64(1), "acct", "t1", "HS256", "d1").
			AddRow(int64(2), "acct", "t2", "HS256", "d2"))

	rows, err := s.Tokens().ListAccountTokens(context.Background(), "acct")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[1].ID)
	assert.Equal(t, "t2", rows[1].Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}
