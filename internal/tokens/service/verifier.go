package service

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/metrics"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
)

const bearerPrefix = "Bearer "

// RequestVerifier checks "Authorization" header values.
type RequestVerifier struct {
	Verifier jwtx.Verifier
	Metrics  *metrics.Metrics
}

func NewRequestVerifier(v jwtx.Verifier) *RequestVerifier {
	return &RequestVerifier{Verifier: v}
}

// Verify expects exactly "Bearer <token>". Anything else is
// ErrMissingAuthorization; a token that fails validation is
// ErrVerificationFailure wrapping the jwtx kind.
func (v *RequestVerifier) Verify(header string) (jwtx.Claims, error) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		v.Metrics.Verified(metrics.ResultMissing)
		return nil, fmt.Errorf("%w: expected a bearer token", domain.ErrMissingAuthorization)
	}

	claims, err := v.Verifier.Verify(token)
	if err != nil {
		v.Metrics.Verified(metrics.ResultFailed)
		return nil, fmt.Errorf("%w: %w", domain.ErrVerificationFailure, err)
	}

	v.Metrics.Verified(metrics.ResultOK)
	return claims, nil
}
