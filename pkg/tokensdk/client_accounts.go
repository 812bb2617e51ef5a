package tokensdk

import (
	"context"
	"net/http"
	"net/url"
)

// AddAccount registers an account policy.
func (c *SDKClient) AddAccount(ctx context.Context, acct Account) error {
	resp, err := c.doAdminRequest(ctx, http.MethodPost, "/v1/accounts", acct)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusCreated)
}

// ListAccounts returns the registered account ids in sorted order.
func (c *SDKClient) ListAccounts(ctx context.Context) ([]string, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodGet, "/v1/accounts", nil)
	if err != nil {
		return nil, err
	}

	var out ListAccountsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// GetAccount fetches an account policy.
func (c *SDKClient) GetAccount(ctx context.Context, id string) (*Account, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := decodeJSON(resp, &acct, http.StatusOK); err != nil {
		return nil, err
	}
	return &acct, nil
}

// RemoveAccount deletes an account and all its persisted tokens. It reports
// whether the account existed.
func (c *SDKClient) RemoveAccount(ctx context.Context, id string) (bool, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodDelete, "/v1/accounts/"+url.PathEscape(id), nil)
	if err != nil {
		return false, err
	}

	var out RemoveAccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Removed, nil
}
