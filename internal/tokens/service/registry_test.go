package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
)

func TestRegistryAddAccount(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 5)
	ctx := context.Background()

	acct := domain.Account{
		Claims:        map[string]any{"iss": "svc", "roles": []any{"admin"}},
		AccessMaxAge:  time.Minute,
		RefreshMaxAge: time.Hour,
	}
	require.NoError(t, h.registry.AddAccount(ctx, "u1", acct))

	t.Run("duplicate is rejected and keeps the first entry", func(t *testing.T) {
		other := acct
		other.Claims = map[string]any{"iss": "other"}
		err := h.registry.AddAccount(ctx, "u1", other)
		require.ErrorIs(t, err, domain.ErrAlreadyRegistered)

		got, err := h.registry.GetAccount("u1")
		require.NoError(t, err)
		require.Equal(t, "svc", got.Claims["iss"])
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := h.registry.GetAccount("u1")
		require.NoError(t, err)
		got.Claims["iss"] = "mutated"

		again, err := h.registry.GetAccount("u1")
		require.NoError(t, err)
		require.Equal(t, "svc", again.Claims["iss"])
	})

	t.Run("caller map is not aliased", func(t *testing.T) {
		acct.Claims["iss"] = "changed-after-add"
		got, err := h.registry.GetAccount("u1")
		require.NoError(t, err)
		require.Equal(t, "svc", got.Claims["iss"])
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := h.registry.GetAccount("nobody")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("rejects bad lifetimes", func(t *testing.T) {
		cases := []domain.Account{
			{AccessMaxAge: 30 * time.Second, RefreshMaxAge: time.Hour},
			{AccessMaxAge: time.Hour, RefreshMaxAge: time.Hour},
			{AccessMaxAge: time.Hour, RefreshMaxAge: time.Minute},
			{AccessMaxAge: time.Minute, RefreshMaxAge: time.Hour, GraceInterval: -time.Second},
		}
		for _, c := range cases {
			require.ErrorIs(t, h.registry.AddAccount(ctx, "bad", c), domain.ErrInvalidParameter)
		}
		require.ErrorIs(t, h.registry.AddAccount(ctx, "", acct), domain.ErrInvalidParameter)
	})

	t.Run("small margin is accepted", func(t *testing.T) {
		require.NoError(t, h.registry.AddAccount(ctx, "tight", domain.Account{
			AccessMaxAge: time.Minute, RefreshMaxAge: 2 * time.Minute,
		}))
	})

	require.Equal(t, []string{"tight", "u1"}, h.registry.Accounts())
}

func TestRegistryRemoveAccount(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 5)
	ctx := context.Background()
	h.addAccount(t, "u1", domain.Account{Claims: map[string]any{"iss": "svc"}})
	h.addAccount(t, "u2", domain.Account{})

	for range 3 {
		_, err := h.svc.IssueTokenPair(ctx, "u1", nil)
		require.NoError(t, err)
	}
	_, err := h.svc.IssueTokenPair(ctx, "u2", nil)
	require.NoError(t, err)
	require.Len(t, h.rows(t, "u1"), 3)

	removed, err := h.registry.RemoveAccount(ctx, "u1")
	require.NoError(t, err)
	require.True(t, removed)
	require.Empty(t, h.rows(t, "u1"))
	require.Len(t, h.rows(t, "u2"), 1, "other accounts keep their rows")

	_, err = h.svc.IssueTokenPair(ctx, "u1", nil)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	removed, err = h.registry.RemoveAccount(ctx, "u1")
	require.NoError(t, err)
	require.False(t, removed)

	evs := h.events.kinds(events.KindAccountRemoved)
	require.Len(t, evs, 1)
	require.Equal(t, int64(3), evs[0].Count)
}

type invalidatorFunc func(ctx context.Context, accountID string) error

func (f invalidatorFunc) Invalidate(ctx context.Context, accountID string) error {
	return f(ctx, accountID)
}

func TestRegistryRemoveInvalidatesCache(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 5)

	var invalidated []string
	reg := NewRegistry(h.store, h.tokens, invalidatorFunc(func(_ context.Context, id string) error {
		invalidated = append(invalidated, id)
		return nil
	}), nil)

	require.NoError(t, reg.AddAccount(context.Background(), "remote", domain.Account{
		AccessMaxAge: time.Minute, RefreshMaxAge: time.Hour, ProviderURL: "http://example.invalid",
	}))
	removed, err := reg.RemoveAccount(context.Background(), "remote")
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, []string{"remote"}, invalidated)
}
