package sqldb

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type tokensRepo struct {
	db   querier
	q    queries
	inTx bool
}

func (r *tokensRepo) LockAccount(ctx context.Context, accountID string) error {
	// Outside a transaction the lock would be released immediately.
	if r.q.dialect.LockAccount == "" || !r.inTx {
		return nil
	}
	_, err := r.db.ExecContext(ctx, r.q.dialect.LockAccount, accountID)
	return err
}

func (r *tokensRepo) ListAccountTokens(ctx context.Context, accountID string) ([]domain.TokenRecord, error) {
	return r.list(ctx, r.q.listAccount, accountID)
}

func (r *tokensRepo) CountAccountTokens(ctx context.Context, accountID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.q.countAccount, accountID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *tokensRepo) CreateToken(ctx context.Context, rec domain.TokenRecord) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.q.insert,
		rec.AccountID, rec.Token, rec.Algorithm, rec.Decoder,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *tokensRepo) UpdateToken(ctx context.Context, id int64, token string) error {
	res, err := r.db.ExecContext(ctx, r.q.update, token, id)
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

func (r *tokensRepo) DeleteTokens(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx, r.q.deleteIDs(len(ids)), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) DeleteAccountTokens(ctx context.Context, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q.deleteAccount, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) ListTokens(ctx context.Context, afterID int64, limit int) ([]domain.TokenRecord, error) {
	return r.list(ctx, r.q.listAfter, afterID, limit)
}

func (r *tokensRepo) list(ctx context.Context, query string, args ...any) ([]domain.TokenRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapNotFound(err)
	}
	defer rows.Close()

	var out []domain.TokenRecord
	for rows.Next() {
		var rec domain.TokenRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Token, &rec.Algorithm, &rec.Decoder); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
