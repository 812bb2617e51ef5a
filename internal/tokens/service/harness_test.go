package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/metrics"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type recorder struct {
	mu  sync.Mutex
	evs []events.Event
}

func (r *recorder) Publish(_ context.Context, evs ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, evs...)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) kinds(kind events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type harness struct {
	store    *sqlite.Store
	signer   jwtx.Signer
	tokens   *TokenStore
	registry *Registry
	svc      *TokenService
	verifier *RequestVerifier
	events   *recorder
	metrics  *metrics.Metrics

	mu  sync.Mutex
	now time.Time
}

// newHarness wires the services over an in-memory sqlite store with an
// HS256 signer. limit is the default per-account cap.
func newHarness(t *testing.T, limit int) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:", store.DefaultColumns())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner(jwtx.AlgHS256, testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierForSigner(signer, jwtx.VerifyOptions{})
	require.NoError(t, err)

	h := &harness{
		store:   st,
		signer:  signer,
		events:  &recorder{},
		metrics: metrics.New(prometheus.NewRegistry()),
		now:     time.Now().Truncate(time.Second),
	}

	h.tokens = NewTokenStore(st, signer, limit)
	h.tokens.now = h.clock
	h.registry = NewRegistry(st, h.tokens, nil, h.events)
	h.svc = NewTokenService(h.registry, st, h.tokens, signer)
	h.svc.Events = h.events
	h.svc.Metrics = h.metrics
	h.svc.now = h.clock
	h.verifier = NewRequestVerifier(verifier)
	h.verifier.Metrics = h.metrics

	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) addAccount(t *testing.T, id string, acct domain.Account) {
	t.Helper()
	if acct.AccessMaxAge == 0 {
		acct.AccessMaxAge = time.Minute
	}
	if acct.RefreshMaxAge == 0 {
		acct.RefreshMaxAge = time.Hour
	}
	require.NoError(t, h.registry.AddAccount(context.Background(), id, acct))
}

func (h *harness) rows(t *testing.T, accountID string) []domain.TokenRecord {
	t.Helper()
	rows, err := h.store.Tokens().ListAccountTokens(context.Background(), accountID)
	require.NoError(t, err)
	return rows
}

// seed stores a token signed with the given times straight into the table.
func (h *harness) seed(t *testing.T, accountID string, iat, exp time.Time) int64 {
	t.Helper()
	tok, err := h.signer.Sign(jwtx.Claims{
		"sub": accountID,
		"iat": iat.Unix(),
		"exp": exp.Unix(),
	}, "R0")
	require.NoError(t, err)
	return h.seedRaw(t, accountID, tok)
}

func (h *harness) seedRaw(t *testing.T, accountID, token string) int64 {
	t.Helper()
	id, err := h.store.Tokens().CreateToken(context.Background(), domain.TokenRecord{
		AccountID: accountID, Token: token, Algorithm: jwtx.AlgHS256, Decoder: "x",
	})
	require.NoError(t, err)
	return id
}

func decode(t *testing.T, token string) jwtx.Decoded {
	t.Helper()
	d, err := jwtx.Decode(token)
	require.NoError(t, err)
	return d
}

func ids(rows []domain.TokenRecord) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
