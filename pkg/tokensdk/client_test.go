package tokensdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSendsAdminKeyAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(AdminKeyHeader) != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorCodeUnauthorized, ErrorDescription: "admin key required"})
			return
		}
		switch r.URL.Path {
		case "/v1/accounts/a%2Fb", "/v1/accounts/a/b":
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorCodeAccountNotFound})
		case "/v1/accounts/u1/tokens":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "a", "refresh_token": "r", "created_in": 1, "expires_in": 61,
			})
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	c := NewSDKClient(srv.URL + "/")
	ctx := context.Background()

	_, err := c.IssueTokenPair(ctx, "u1", nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	c.AdminKey = "secret"
	pair, err := c.IssueTokenPair(ctx, "u1", map[string]any{"scope": "x"})
	require.NoError(t, err)
	require.Equal(t, "a", pair.AccessToken)
	require.Equal(t, int64(61), pair.ExpiresIn)

	_, err = c.GetAccount(ctx, "a/b")
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = c.RemoveAccount(ctx, "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTeapot, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}
