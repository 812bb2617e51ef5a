package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/metrics"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/remote"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

// MinTokenDuration is the shortest lifetime IssueToken accepts.
const MinTokenDuration = 60 * time.Second

// Human readable validity claims, set next to "nbf"/"exp".
const (
	ClaimValidFrom  = "valid-from"
	ClaimValidUntil = "valid-until"
)

// isoLayout renders UTC as "+00:00" rather than "Z".
const isoLayout = "2006-01-02T15:04:05-07:00"

// Claims callers can never set on a pair.
var pairReserved = []string{
	jwtx.ClaimIssuedAt, jwtx.ClaimExpiresAt, jwtx.ClaimID, jwtx.ClaimNotBefore, jwtx.ClaimSubject,
}

// Claims callers can never set on a single token. "iss" always comes from
// the account.
var singleReserved = append([]string{jwtx.ClaimIssuer}, pairReserved...)

// RemoteProvider issues pairs for accounts backed by a third party.
type RemoteProvider interface {
	Issue(ctx context.Context, req remote.Request) (domain.TokenPair, error)
}

// TokenService issues token pairs and standalone tokens for registered
// accounts.
type TokenService struct {
	Registry *Registry
	Store    store.Store
	Tokens   TokenPersister
	Signer   jwtx.Signer

	Remote  RemoteProvider
	Events  events.Publisher
	Metrics *metrics.Metrics

	now func() time.Time
}

func NewTokenService(reg *Registry, st store.Store, tokens TokenPersister, signer jwtx.Signer) *TokenService {
	return &TokenService{
		Registry: reg,
		Store:    st,
		Tokens:   tokens,
		Signer:   signer,
		Events:   events.Nop{},
		now:      time.Now,
	}
}

// IssueTokenPair issues an access/refresh pair for accountID in its own
// transaction. extra may override account claims except the registered
// time and identity claims.
func (s *TokenService) IssueTokenPair(ctx context.Context, accountID string, extra jwtx.Claims) (domain.TokenPair, error) {
	return s.issuePair(ctx, nil, accountID, extra)
}

// IssueTokenPairTx is IssueTokenPair inside a transaction owned by the
// caller. It never commits or rolls back tx; on error the caller must roll
// back.
func (s *TokenService) IssueTokenPairTx(ctx context.Context, tx store.Tx, accountID string, extra jwtx.Claims) (domain.TokenPair, error) {
	if tx == nil {
		return domain.TokenPair{}, fmt.Errorf("%w: nil transaction", domain.ErrInvalidParameter)
	}
	return s.issuePair(ctx, tx, accountID, extra)
}

func (s *TokenService) issuePair(ctx context.Context, tx store.Tx, accountID string, extra jwtx.Claims) (domain.TokenPair, error) {
	started := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TokenService.IssueTokenPair")
	defer span.End()
	span.SetAttributes(attribute.String("account", accountID))

	ctx = slogx.WithAccount(ctx, accountID)
	l := slogx.FromContext(ctx)

	acct, err := s.Registry.GetAccount(accountID)
	if err != nil {
		span.SetStatus(codes.Error, "account not found")
		return domain.TokenPair{}, err
	}

	if acct.Remote() {
		claims := pairClaims(acct, accountID, extra, s.now())
		pair, err := s.issueRemote(ctx, accountID, acct, claims, len(extra) == 0)
		if err != nil {
			return domain.TokenPair{}, fail(span, err)
		}
		s.Metrics.Issued(metrics.KindRemote, started)
		return pair, nil
	}

	var out issued
	issue := func(tx store.Tx) error {
		if err := tx.Tokens().LockAccount(ctx, accountID); err != nil {
			return fmt.Errorf("%w: lock account: %v", domain.ErrPersistenceFailure, err)
		}
		unlock := s.Registry.lockAccount(accountID)
		defer unlock()

		// Re-read under the account lock; a removal may have won the race.
		acct, err := s.Registry.GetAccount(accountID)
		if err != nil {
			return err
		}
		now := s.now()
		out, err = s.issueLocal(ctx, tx, accountID, acct, pairClaims(acct, accountID, extra, now), now)
		return err
	}

	if tx != nil {
		err = issue(tx)
	} else {
		err = s.Store.WithTx(ctx, issue)
	}
	if err != nil {
		if !isKind(err) {
			err = fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		l.Error("token pair issuance failed", slog.Any("error", err))
		return domain.TokenPair{}, fail(span, err)
	}

	span.SetAttributes(attribute.Int64("storage_id", out.storageID))
	s.Metrics.Issued(metrics.KindPair, started)
	s.publish(ctx, accountID, out.storageID, out.evicted)

	if len(out.evicted) > 0 {
		l.Info("evicted account tokens", slog.Int("count", len(out.evicted)))
	}
	return out.pair, nil
}

// isKind reports whether err already carries one of the domain failure kinds.
func isKind(err error) bool {
	for _, kind := range []error{
		domain.ErrAccountNotFound,
		domain.ErrSigningFailure,
		domain.ErrPersistenceFailure,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

type issued struct {
	pair      domain.TokenPair
	storageID int64
	evicted   []Eviction
}

// issueLocal runs the two-phase persist: a placeholder refresh token is
// stored to obtain its id, then re-signed with that id in its "kid".
func (s *TokenService) issueLocal(ctx context.Context, tx store.Tx, accountID string, acct domain.Account, claims jwtx.Claims, now time.Time) (issued, error) {
	candidate, err := s.sign(claims, domain.KID(domain.NatureRefresh, 0))
	if err != nil {
		return issued{}, err
	}

	id, evicted, err := s.Tokens.Persist(ctx, tx, accountID, candidate, acct.TokenLimit)
	if err != nil {
		return issued{}, err
	}

	refresh, err := s.sign(claims, domain.KID(domain.NatureRefresh, id))
	if err != nil {
		return issued{}, err
	}
	if err := s.Tokens.Finalize(ctx, tx, id, refresh); err != nil {
		return issued{}, err
	}

	accessClaims := claims.Clone()
	accessExp := now.Add(acct.AccessMaxAge).Unix()
	accessClaims[jwtx.ClaimExpiresAt] = accessExp
	accessClaims[ClaimValidUntil] = isoTime(accessExp)

	access, err := s.sign(accessClaims, domain.KID(domain.NatureAccess, id))
	if err != nil {
		return issued{}, err
	}

	return issued{
		pair: domain.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			CreatedIn:    now.Unix(),
			ExpiresIn:    accessExp,
		},
		storageID: id,
		evicted:   evicted,
	}, nil
}

func (s *TokenService) issueRemote(ctx context.Context, accountID string, acct domain.Account, claims jwtx.Claims, cacheable bool) (domain.TokenPair, error) {
	if s.Remote == nil {
		return domain.TokenPair{}, fmt.Errorf("%w: no remote provider configured", domain.ErrRemoteProviderFailure)
	}
	return s.Remote.Issue(ctx, remote.Request{
		AccountID: accountID,
		URL:       acct.ProviderURL,
		Timeout:   acct.RequestTimeout,
		Claims:    claims,
		Cacheable: cacheable,
	})
}

// IssueToken signs a standalone, unpersisted token whose "kid" is nature.
// nature must be a single upper case letter other than "R".
func (s *TokenService) IssueToken(ctx context.Context, accountID, nature string, duration, grace time.Duration, extra jwtx.Claims) (string, error) {
	started := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TokenService.IssueToken")
	defer span.End()
	span.SetAttributes(attribute.String("account", accountID), attribute.String("nature", nature))

	if !validNature(nature) {
		return "", fail(span, fmt.Errorf("%w: invalid nature %q", domain.ErrInvalidParameter, nature))
	}
	if duration < MinTokenDuration {
		return "", fail(span, fmt.Errorf("%w: duration must be at least %s", domain.ErrInvalidParameter, MinTokenDuration))
	}
	if grace < 0 {
		return "", fail(span, fmt.Errorf("%w: negative grace interval", domain.ErrInvalidParameter))
	}

	acct, err := s.Registry.GetAccount(accountID)
	if err != nil {
		return "", fail(span, err)
	}
	claims := singleClaims(acct, accountID, extra, s.now(), duration, grace)

	token, err := s.sign(claims, nature)
	if err != nil {
		slogx.FromContext(ctx).Error("token issuance failed", slog.String("account", accountID), slog.Any("error", err))
		return "", fail(span, err)
	}

	s.Metrics.Issued(metrics.KindSingle, started)
	return token, nil
}

func (s *TokenService) sign(claims jwtx.Claims, kid string) (string, error) {
	token, err := s.Signer.Sign(claims, kid)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigningFailure, err)
	}
	return token, nil
}

func (s *TokenService) publish(ctx context.Context, accountID string, storageID int64, evicted []Eviction) {
	if s.Events == nil {
		return
	}

	evs := make([]events.Event, 0, len(evicted)+1)
	counts := make(map[string]int)
	for _, e := range evicted {
		ev := events.New(events.KindTokenEvicted, accountID)
		ev.StorageID = e.ID
		ev.Reason = e.Reason
		evs = append(evs, ev)
		counts[e.Reason]++
	}
	for reason, n := range counts {
		s.Metrics.Evicted(reason, n)
	}

	issued := events.New(events.KindTokenIssued, accountID)
	issued.StorageID = storageID
	evs = append(evs, issued)

	if err := s.Events.Publish(ctx, evs...); err != nil {
		slogx.FromContext(ctx).Warn("failed to publish token events", slog.Any("error", err))
	}
}

// pairClaims builds the refresh token claim set; the access token differs
// only in its expiry.
func pairClaims(acct domain.Account, accountID string, extra jwtx.Claims, now time.Time) jwtx.Claims {
	claims := jwtx.Claims(acct.Claims).Clone()
	merge(claims, extra, pairReserved)
	stamp(claims, accountID, now, acct.RefreshMaxAge, acct.GraceInterval)
	return claims
}

func singleClaims(acct domain.Account, accountID string, extra jwtx.Claims, now time.Time, duration, grace time.Duration) jwtx.Claims {
	claims := jwtx.Claims{}
	if iss, ok := acct.Claims[jwtx.ClaimIssuer]; ok && iss != "" {
		claims[jwtx.ClaimIssuer] = iss
	}
	merge(claims, extra, singleReserved)
	stamp(claims, accountID, now, duration, grace)
	return claims
}

func merge(dst, src jwtx.Claims, reserved []string) {
	for k, v := range src {
		if isReserved(k, reserved) {
			continue
		}
		dst[k] = v
	}
}

func isReserved(k string, reserved []string) bool {
	for _, r := range reserved {
		if k == r {
			return true
		}
	}
	return false
}

// stamp sets the registered identity and time claims.
func stamp(claims jwtx.Claims, accountID string, now time.Time, ttl, grace time.Duration) {
	iat := now.Unix()
	claims[jwtx.ClaimID] = jwtx.NewJTI()
	claims[jwtx.ClaimSubject] = accountID
	claims[jwtx.ClaimIssuedAt] = iat

	if grace > 0 {
		nbf := iat + int64(grace/time.Second)
		claims[jwtx.ClaimNotBefore] = nbf
		claims[ClaimValidFrom] = isoTime(nbf)
	} else {
		claims[ClaimValidFrom] = isoTime(iat)
	}

	exp := iat + int64(ttl/time.Second)
	claims[jwtx.ClaimExpiresAt] = exp
	claims[ClaimValidUntil] = isoTime(exp)
}

func isoTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(isoLayout)
}

func validNature(n string) bool {
	return len(n) == 1 && n[0] >= 'A' && n[0] <= 'Z' && n[0] != domain.NatureRefresh
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
