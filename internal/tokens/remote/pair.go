package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
)

// absoluteThreshold separates an absolute unix "expires_in" from a relative
// number of seconds.
const absoluteThreshold = 1_000_000_000

// NormalizeKey maps provider field names like "Access-Token" onto
// "access_token".
func NormalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}

// DecodePair parses a provider response. Known fields land in the pair,
// everything else is kept in Extra under its normalized name.
func DecodePair(body []byte) (domain.TokenPair, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return domain.TokenPair{}, fmt.Errorf("decode provider response: %w", err)
	}

	var pair domain.TokenPair
	for k, v := range raw {
		switch NormalizeKey(k) {
		case "access_token":
			pair.AccessToken, _ = v.(string)
		case "refresh_token":
			pair.RefreshToken, _ = v.(string)
		case "created_in":
			pair.CreatedIn = asInt(v)
		case "expires_in":
			pair.ExpiresIn = asInt(v)
		default:
			if pair.Extra == nil {
				pair.Extra = make(map[string]any)
			}
			pair.Extra[NormalizeKey(k)] = v
		}
	}

	if pair.AccessToken == "" {
		return domain.TokenPair{}, fmt.Errorf("provider response has no access_token")
	}
	return pair, nil
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(n)
	}
	return 0
}

// ExpiresAt resolves a pair's "expires_in" against now.
func ExpiresAt(p domain.TokenPair, now time.Time) time.Time {
	if p.ExpiresIn > absoluteThreshold {
		return time.Unix(p.ExpiresIn, 0)
	}
	return now.Add(time.Duration(p.ExpiresIn) * time.Second)
}
