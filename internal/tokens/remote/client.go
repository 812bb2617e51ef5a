package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

const tracerName = "github.com/aussiebroadwan/tokenreg/internal/tokens/remote"

// DefaultTimeout applies to requests whose account sets no timeout of its own.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

// Request is one delegated issuance.
type Request struct {
	AccountID string
	URL       string
	Timeout   time.Duration
	Claims    jwtx.Claims

	// Cacheable allows answering from, and storing into, the cache. Only
	// requests carrying nothing but the account's own claims qualify.
	Cacheable bool
}

// Client posts claim sets to third party token providers.
type Client struct {
	HTTP  *http.Client
	Cache Cache

	// DefaultTimeout bounds requests without their own Timeout. Zero means
	// no bound. Any Timeout on HTTP still caps every request.
	DefaultTimeout time.Duration

	now func() time.Time
}

// NewClient builds a Client. A nil cache disables caching.
func NewClient(httpClient *http.Client, cache Cache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{HTTP: httpClient, Cache: cache, DefaultTimeout: DefaultTimeout, now: time.Now}
}

// Issue returns the provider's token pair for req.
func (c *Client) Issue(ctx context.Context, req Request) (domain.TokenPair, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "remote.Issue")
	defer span.End()
	span.SetAttributes(attribute.String("account", req.AccountID))

	l := slogx.FromContext(ctx)

	if req.Cacheable && c.Cache != nil {
		pair, ok, err := c.Cache.Get(ctx, req.AccountID)
		if err != nil {
			l.Warn("remote token cache lookup failed", "error", err)
		} else if ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return pair, nil
		}
	}

	pair, err := c.post(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote issuance failed")
		l.Error("remote token provider failed", "error", err)
		return domain.TokenPair{}, err
	}

	if req.Cacheable && c.Cache != nil {
		ttl := ExpiresAt(pair, c.now()).Sub(c.now())
		if err := c.Cache.Set(ctx, req.AccountID, pair, ttl); err != nil {
			l.Warn("remote token cache store failed", "error", err)
		}
	}
	return pair, nil
}

// Invalidate drops any cached pair for accountID.
func (c *Client) Invalidate(ctx context.Context, accountID string) error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Delete(ctx, accountID)
}

func (c *Client) post(ctx context.Context, req Request) (domain.TokenPair, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := json.Marshal(req.Claims)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: encode claims: %v", domain.ErrRemoteProviderFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %v", domain.ErrRemoteProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %v", domain.ErrRemoteProviderFailure, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.TokenPair{}, fmt.Errorf("%w: %s: %s",
			domain.ErrRemoteProviderFailure, resp.Status, strings.TrimSpace(string(text)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: read response: %v", domain.ErrRemoteProviderFailure, err)
	}

	pair, err := DecodePair(raw)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %v", domain.ErrRemoteProviderFailure, err)
	}

	slogx.FromContext(ctx).Debug("remote token obtained", "url", req.URL, "status", resp.StatusCode)
	return pair, nil
}
