package jwtx

import (
	"encoding/json"
	"maps"
	"math"
	"slices"

	"github.com/aussiebroadwan/tokenreg/pkg/cryptox"
)

// Registered claim names.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimID        = "jti"
	ClaimAudience  = "aud"
)

// JTILength is the number of alphanumeric characters in a generated "jti".
const JTILength = 32

// Claims is a JWT claim set. Registered claims live next to whatever the
// account or caller adds, exactly as they appear in the token payload.
type Claims map[string]any

// NewJTI returns a fresh random identifier for the "jti" claim.
func NewJTI() string {
	return cryptox.MustRandomAlphanumeric(JTILength)
}

// Clone returns a shallow copy. A nil receiver yields an empty set.
func (c Claims) Clone() Claims {
	if c == nil {
		return Claims{}
	}
	return maps.Clone(c)
}

func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

func (c Claims) Subject() string { return c.String(ClaimSubject) }
func (c Claims) Issuer() string  { return c.String(ClaimIssuer) }
func (c Claims) ID() string      { return c.String(ClaimID) }

// Audience returns "aud" whether it was encoded as a string or an array.
func (c Claims) Audience() []string {
	switch aud := c[ClaimAudience].(type) {
	case string:
		return []string{aud}
	case []string:
		return aud
	case []any:
		out := make([]string, 0, len(aud))
		for _, a := range aud {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// NumericDate reads a numeric claim as unix seconds. Decoded payloads carry
// float64 values, claims built in-process usually carry int64.
func (c Claims) NumericDate(name string) (int64, bool) {
	switch v := c[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(math.Round(v)), true
	case json.Number:
		n, err := v.Int64()
		if err == nil {
			return n, true
		}
		f, err := v.Float64()
		return int64(math.Round(f)), err == nil
	}
	return 0, false
}

func (c Claims) ExpiresAt() (int64, bool) { return c.NumericDate(ClaimExpiresAt) }
func (c Claims) IssuedAt() (int64, bool)  { return c.NumericDate(ClaimIssuedAt) }

// ValidateIssuer checks if the issuer matches expected value.
func (c Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer() != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	aud := c.Audience()
	for _, want := range expected {
		if slices.Contains(aud, want) {
			return nil
		}
	}

	return ErrAudience
}
