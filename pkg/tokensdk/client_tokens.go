package tokensdk

import (
	"context"
	"net/http"
	"net/url"
)

// IssueTokenPair issues an access/refresh pair for account. claims may add
// to or override the account's own claims.
func (c *SDKClient) IssueTokenPair(ctx context.Context, account string, claims map[string]any) (*TokenPairResponse, error) {
	path := "/v1/accounts/" + url.PathEscape(account) + "/tokens"
	resp, err := c.doAdminRequest(ctx, http.MethodPost, path, IssueTokenPairRequest{Claims: claims})
	if err != nil {
		return nil, err
	}

	var pair TokenPairResponse
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

// IssueToken issues a standalone token of the given nature.
func (c *SDKClient) IssueToken(ctx context.Context, account, nature string, req IssueTokenRequest) (string, error) {
	path := "/v1/accounts/" + url.PathEscape(account) + "/tokens/" + url.PathEscape(nature)
	resp, err := c.doAdminRequest(ctx, http.MethodPost, path, req)
	if err != nil {
		return "", err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Token, nil
}

// VerifyToken asks the service to verify token and returns its claims.
func (c *SDKClient) VerifyToken(ctx context.Context, token string) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/claims", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, err
	}

	var out ClaimsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Claims, nil
}
