package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

const tracerName = "github.com/aussiebroadwan/tokenreg/internal/tokens/service"

// Eviction is one row deleted while making room for a new token.
type Eviction struct {
	ID     int64
	Reason string
}

// TokenPersister is what TokenService needs from the token table.
type TokenPersister interface {
	// Persist enforces the account's limit and inserts token inside tx,
	// returning the new storage id and the rows it deleted on the way.
	// It never commits or rolls back tx.
	Persist(ctx context.Context, tx store.Tx, accountID, token string, limit int) (int64, []Eviction, error)

	// Finalize swaps the placeholder stored under id for the definitive token.
	Finalize(ctx context.Context, tx store.Tx, id int64, token string) error

	AccountCleaner
}

// TokenStore persists refresh tokens and enforces the per-account cap.
type TokenStore struct {
	Store store.Store

	// Limit is the cap for accounts that do not set their own. Zero or
	// negative disables it.
	Limit int

	algorithm string
	decoder   string
	now       func() time.Time
}

// NewTokenStore records rows as signed by signer.
func NewTokenStore(st store.Store, signer jwtx.Signer, limit int) *TokenStore {
	return &TokenStore{
		Store:     st,
		Limit:     limit,
		algorithm: signer.Alg(),
		decoder:   base64.URLEncoding.EncodeToString(signer.VerificationKey()),
		now:       time.Now,
	}
}

// EffectiveLimit resolves an account's own limit against the default.
func (s *TokenStore) EffectiveLimit(accountLimit int) int {
	switch {
	case accountLimit < 0:
		return 0
	case accountLimit == 0:
		return s.Limit
	default:
		return accountLimit
	}
}

func (s *TokenStore) Persist(ctx context.Context, tx store.Tx, accountID, token string, limit int) (int64, []Eviction, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TokenStore.Persist")
	defer span.End()
	span.SetAttributes(attribute.String("account", accountID))

	id, evicted, err := s.persist(ctx, tx.Tokens(), accountID, token, s.EffectiveLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	span.SetAttributes(attribute.Int64("storage_id", id), attribute.Int("evicted", len(evicted)))
	return id, evicted, nil
}

func (s *TokenStore) persist(ctx context.Context, repo store.Tokens, accountID, token string, limit int) (int64, []Eviction, error) {
	l := slogx.FromContext(ctx)

	if err := repo.LockAccount(ctx, accountID); err != nil {
		return 0, nil, fmt.Errorf("lock account: %w", err)
	}

	rows, err := repo.ListAccountTokens(ctx, accountID)
	if err != nil {
		return 0, nil, fmt.Errorf("list tokens: %w", err)
	}

	now := s.now().Unix()
	var (
		evicted []Eviction
		live    []liveRow
	)
	for _, row := range rows {
		st := classifyRow(row, now)
		switch {
		case st.corrupt:
			l.Warn("deleting undecodable token row", slog.Int64("storage_id", row.ID))
			evicted = append(evicted, Eviction{ID: row.ID, Reason: events.ReasonCorrupt})
		case st.expired:
			evicted = append(evicted, Eviction{ID: row.ID, Reason: events.ReasonExpired})
		default:
			live = append(live, liveRow{id: row.ID, iat: st.iat})
		}
	}

	// Expired rows go first; the limit only counts what is left.
	if limit > 0 && len(live) >= limit {
		// Stable sort keeps ascending id order among equal iat values.
		slices.SortStableFunc(live, func(a, b liveRow) int {
			switch {
			case a.iat < b.iat:
				return -1
			case a.iat > b.iat:
				return 1
			}
			return 0
		})
		for _, row := range live[:len(live)-limit+1] {
			evicted = append(evicted, Eviction{ID: row.id, Reason: events.ReasonLimit})
		}
	}

	if len(evicted) > 0 {
		ids := make([]int64, len(evicted))
		for i, e := range evicted {
			ids[i] = e.ID
		}
		if _, err := repo.DeleteTokens(ctx, ids...); err != nil {
			return 0, nil, fmt.Errorf("delete tokens: %w", err)
		}
	}

	id, err := repo.CreateToken(ctx, domain.TokenRecord{
		AccountID: accountID,
		Token:     token,
		Algorithm: s.algorithm,
		Decoder:   s.decoder,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("insert token: %w", err)
	}

	return id, evicted, nil
}

func (s *TokenStore) Finalize(ctx context.Context, tx store.Tx, id int64, token string) error {
	if err := tx.Tokens().UpdateToken(ctx, id, token); err != nil {
		return fmt.Errorf("%w: update token %d: %v", domain.ErrPersistenceFailure, id, err)
	}
	return nil
}

// PurgeAccount deletes every persisted row for accountID inside tx.
func (s *TokenStore) PurgeAccount(ctx context.Context, tx store.Tx, accountID string) (int64, error) {
	return tx.Tokens().DeleteAccountTokens(ctx, accountID)
}

type liveRow struct {
	id  int64
	iat int64
}

type rowState struct {
	iat     int64
	expired bool
	corrupt bool
}

// classifyRow reads a stored token without verifying it. Only refresh
// tokens belong in the table, anything else counts as corrupt. A missing
// "exp" never expires and a missing "iat" sorts as newest.
func classifyRow(row domain.TokenRecord, now int64) rowState {
	d, err := jwtx.Decode(row.Token)
	if err != nil {
		return rowState{corrupt: true}
	}
	if nature, _, err := domain.ParseKID(d.KID()); err != nil || nature != domain.NatureRefresh {
		return rowState{corrupt: true}
	}

	st := rowState{iat: math.MaxInt64}
	if iat, ok := d.Claims.IssuedAt(); ok {
		st.iat = iat
	}
	if exp, ok := d.Claims.ExpiresAt(); ok && exp < now {
		st.expired = true
	}
	return st
}
