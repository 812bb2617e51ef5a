package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/stretchr/testify/require"
)

func TestKID(t *testing.T) {
	require.Equal(t, "R0", domain.KID(domain.NatureRefresh, 0))
	require.Equal(t, "A1234", domain.KID(domain.NatureAccess, 1234))
}

func TestTokenPairMarshalKeepsExtraFields(t *testing.T) {
	pair := domain.TokenPair{
		AccessToken:  "a",
		RefreshToken: "r",
		CreatedIn:    10,
		ExpiresIn:    70,
		Extra:        map[string]any{"token_type": "Bearer", "access_token": "ignored"},
	}

	raw, err := json.Marshal(pair)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "a", got["access_token"])
	require.Equal(t, "Bearer", got["token_type"])
	require.EqualValues(t, 70, got["expires_in"])

	// Marshalling must not touch the caller's map.
	require.Equal(t, "ignored", pair.Extra["access_token"])
}

func TestAccountCloneIsIndependent(t *testing.T) {
	acct := domain.Account{Claims: map[string]any{"iss": "svc"}}
	cp := acct.Clone()
	cp.Claims["iss"] = "other"
	require.Equal(t, "svc", acct.Claims["iss"])

	require.NotNil(t, domain.Account{}.Clone().Claims)
	require.False(t, acct.Remote())
	require.True(t, domain.Account{ProviderURL: "http://x"}.Remote())
}

func TestParseKID(t *testing.T) {
	nature, id, err := domain.ParseKID("A42")
	require.NoError(t, err)
	require.Equal(t, byte('A'), nature)
	require.Equal(t, int64(42), id)

	nature, id, err = domain.ParseKID("Z")
	require.NoError(t, err)
	require.Equal(t, byte('Z'), nature)
	require.Zero(t, id)

	for _, bad := range []string{"", "a1", "R-1", "Rx"} {
		_, _, err := domain.ParseKID(bad)
		require.Error(t, err, bad)
	}
}
