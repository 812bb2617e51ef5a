package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
)

const lockWait = 5 * time.Second

type pairResult struct {
	pair domain.TokenPair
	err  error
}

func issueAsync(fn func() (domain.TokenPair, error)) <-chan pairResult {
	ch := make(chan pairResult, 1)
	go func() {
		pair, err := fn()
		ch <- pairResult{pair: pair, err: err}
	}()
	return ch
}

func TestIssueTokenPairTxWhileAnotherIssuanceWaitsForStore(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 5)
	h.addAccount(t, "u1", domain.Account{})
	h.addAccount(t, "u2", domain.Account{})
	ctx := context.Background()

	// The sqlite store has a single connection, so this tx starves
	// every other transaction until it ends.
	tx, err := h.store.Tx(ctx)
	require.NoError(t, err)

	other := issueAsync(func() (domain.TokenPair, error) {
		return h.svc.IssueTokenPair(ctx, "u2", nil)
	})
	time.Sleep(50 * time.Millisecond)

	inTx := issueAsync(func() (domain.TokenPair, error) {
		return h.svc.IssueTokenPairTx(ctx, tx, "u1", nil)
	})
	select {
	case res := <-inTx:
		require.NoError(t, res.err)
	case <-time.After(lockWait):
		t.Fatal("issuance inside the caller's transaction blocked")
	}

	// The registry stays usable while the other issuance waits.
	_, err = h.registry.GetAccount("u2")
	require.NoError(t, err)

	require.NoError(t, tx.Commit())
	select {
	case res := <-other:
		require.NoError(t, res.err)
	case <-time.After(lockWait):
		t.Fatal("issuance never got the store after commit")
	}

	require.Len(t, h.rows(t, "u1"), 1)
	require.Len(t, h.rows(t, "u2"), 1)
	require.Zero(t, h.registry.locks.held())
}

func TestRemoveAccountHoldsAccountLockUntilPurged(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 5)
	h.addAccount(t, "u1", domain.Account{})
	ctx := context.Background()

	_, err := h.svc.IssueTokenPair(ctx, "u1", nil)
	require.NoError(t, err)

	unlock := h.registry.lockAccount("u1")

	type removal struct {
		existed bool
		err     error
	}
	done := make(chan removal, 1)
	go func() {
		existed, err := h.registry.RemoveAccount(ctx, "u1")
		done <- removal{existed, err}
	}()

	select {
	case <-done:
		t.Fatal("removal ran without the account lock")
	case <-time.After(100 * time.Millisecond):
	}
	_, err = h.registry.GetAccount("u1")
	require.NoError(t, err, "entry stays until the removal owns the account")

	unlock()
	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.True(t, res.existed)
	case <-time.After(lockWait):
		t.Fatal("removal never finished")
	}
	require.Empty(t, h.rows(t, "u1"))

	// A re-registered account keeps what it issues after the purge.
	h.addAccount(t, "u1", domain.Account{})
	_, err = h.svc.IssueTokenPair(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, h.rows(t, "u1"), 1)
}

func TestAccountLocksAreIndependentAndReleased(t *testing.T) {
	t.Parallel()
	locks := newAccountLocks()

	unlockA := locks.lock("a")
	unlockB := locks.lock("b")
	require.Equal(t, 2, locks.held())

	acquired := make(chan struct{})
	go func() {
		unlock := locks.lock("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder got a locked account")
	case <-time.After(50 * time.Millisecond):
	}

	unlockA()
	unlockA()
	select {
	case <-acquired:
	case <-time.After(lockWait):
		t.Fatal("waiter never woke up")
	}

	unlockB()
	require.Eventually(t, func() bool { return locks.held() == 0 }, lockWait, 10*time.Millisecond)
}

func TestIssueTokenPairTreatsNonRefreshRowsAsCorrupt(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 5)
	h.addAccount(t, "u1", domain.Account{})

	tok, err := h.signer.Sign(jwtx.Claims{
		"sub": "u1",
		"iat": h.now.Unix(),
		"exp": h.now.Add(time.Hour).Unix(),
	}, "A1")
	require.NoError(t, err)
	stray := h.seedRaw(t, "u1", tok)
	kept := h.seed(t, "u1", h.now, h.now.Add(time.Hour))

	_, err = h.svc.IssueTokenPair(context.Background(), "u1", nil)
	require.NoError(t, err)

	rows := h.rows(t, "u1")
	require.Len(t, rows, 2)
	require.NotContains(t, ids(rows), stray)
	require.Contains(t, ids(rows), kept)
}
