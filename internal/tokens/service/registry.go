package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

const (
	// MinAccessMaxAge is the shortest access token lifetime an account may ask for.
	MinAccessMaxAge = 60 * time.Second

	// RecommendedRefreshMargin is how much longer refresh tokens should live
	// than access tokens. Smaller margins are accepted with a warning.
	RecommendedRefreshMargin = 300 * time.Second
)

// AccountCleaner deletes everything persisted for an account inside tx.
type AccountCleaner interface {
	PurgeAccount(ctx context.Context, tx store.Tx, accountID string) (int64, error)
}

// CacheInvalidator forgets cached remote responses for an account.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, accountID string) error
}

// Registry is the in-memory map of account policies.
//
// Lock order is store transaction (and its per-account row lock), then the
// account lock, then mu. mu only guards the map and is never held while
// waiting on anything else.
type Registry struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	locks    *accountLocks

	store  store.Store
	tokens AccountCleaner
	cache  CacheInvalidator
	events events.Publisher
}

// NewRegistry creates an empty registry. Persisted rows are purged through
// tokens inside a transaction of st on removal; cache and pub may be nil.
func NewRegistry(st store.Store, tokens AccountCleaner, cache CacheInvalidator, pub events.Publisher) *Registry {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Registry{
		accounts: make(map[string]domain.Account),
		locks:    newAccountLocks(),
		store:    st,
		tokens:   tokens,
		cache:    cache,
		events:   pub,
	}
}

// AddAccount registers the issuance policy for id. A duplicate id is
// reported with ErrAlreadyRegistered and leaves the existing entry alone.
func (r *Registry) AddAccount(ctx context.Context, id string, acct domain.Account) error {
	l := slogx.FromContext(ctx)

	if id == "" {
		return fmt.Errorf("%w: empty account id", domain.ErrInvalidParameter)
	}
	if acct.AccessMaxAge < MinAccessMaxAge {
		return fmt.Errorf("%w: access max age must be at least %s", domain.ErrInvalidParameter, MinAccessMaxAge)
	}
	if acct.RefreshMaxAge <= acct.AccessMaxAge {
		return fmt.Errorf("%w: refresh max age must exceed access max age", domain.ErrInvalidParameter)
	}
	if acct.GraceInterval < 0 {
		return fmt.Errorf("%w: negative grace interval", domain.ErrInvalidParameter)
	}
	if acct.RefreshMaxAge-acct.AccessMaxAge < RecommendedRefreshMargin {
		l.Warn("refresh max age is close to access max age",
			slog.String("account", id),
			slog.Duration("margin", acct.RefreshMaxAge-acct.AccessMaxAge),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[id]; exists {
		l.Warn("account already registered", slog.String("account", id))
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, id)
	}

	r.accounts[id] = acct.Clone()
	l.Debug("account registered", slog.String("account", id))
	return nil
}

// GetAccount returns a copy of the policy registered for id.
func (r *Registry) GetAccount(id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return acct.Clone(), nil
}

// Accounts lists the registered ids in sorted order.
func (r *Registry) Accounts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.accounts))
}

// RemoveAccount drops id from the registry and purges its persisted tokens.
// It reports whether an entry existed. Rows are purged even when it did not,
// so a previous partial removal can be finished.
//
// The entry is dropped and the rows deleted while the account lock is held,
// so an issuance for a re-registered id can only start after the purge.
func (r *Registry) RemoveAccount(ctx context.Context, id string) (bool, error) {
	l := slogx.FromContext(ctx)

	var (
		existed bool
		removed int64
	)
	drop := func() {
		r.mu.Lock()
		_, existed = r.accounts[id]
		delete(r.accounts, id)
		r.mu.Unlock()
	}

	if r.store == nil || r.tokens == nil {
		unlock := r.locks.lock(id)
		drop()
		unlock()
	} else {
		err := r.store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Tokens().LockAccount(ctx, id); err != nil {
				return err
			}
			unlock := r.locks.lock(id)
			defer unlock()

			drop()
			n, err := r.tokens.PurgeAccount(ctx, tx, id)
			removed = n
			return err
		})
		if err != nil {
			l.Error("failed to purge account tokens", slog.String("account", id), slog.Any("error", err))
			return existed, fmt.Errorf("%w: purge tokens: %v", domain.ErrPersistenceFailure, err)
		}
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, id); err != nil {
			l.Warn("failed to invalidate remote token cache", slog.String("account", id), slog.Any("error", err))
		}
	}

	if existed {
		ev := events.New(events.KindAccountRemoved, id)
		ev.Count = removed
		if err := r.events.Publish(ctx, ev); err != nil {
			l.Warn("failed to publish account removal", slog.Any("error", err))
		}
		l.Info("account removed", slog.String("account", id), slog.Int64("tokens_deleted", removed))
	} else {
		l.Warn("no account to remove", slog.String("account", id))
	}

	return existed, nil
}

// lockAccount serialises issuance and removal for id. Callers must already
// hold whatever store resources they need.
func (r *Registry) lockAccount(id string) func() {
	return r.locks.lock(id)
}
