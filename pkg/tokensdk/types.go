package tokensdk

// ErrorResponse is the body of every error the service sends.
type ErrorResponse struct {
	// Error is a short machine readable code (e.g., "account_not_found")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// Account is the issuance policy of one account. Durations are in seconds.
type Account struct {
	// ID identifies the account; it becomes the "sub" of every token.
	ID string `json:"id"`

	// Claims are merged into every token issued for the account.
	Claims map[string]any `json:"claims,omitempty"`

	AccessMaxAge  int64 `json:"access_max_age"`
	RefreshMaxAge int64 `json:"refresh_max_age"`
	GraceInterval int64 `json:"grace_interval,omitempty"`

	// TokenLimit caps live refresh tokens. 0 uses the service default and a
	// negative value disables the cap.
	TokenLimit int `json:"token_limit,omitempty"`

	// ProviderURL delegates issuance to a remote provider.
	ProviderURL    string `json:"provider_url,omitempty"`
	RequestTimeout int64  `json:"request_timeout,omitempty"`
}

// IssueTokenPairRequest is the body of POST /v1/accounts/{account}/tokens.
type IssueTokenPairRequest struct {
	Claims map[string]any `json:"claims,omitempty"`
}

// TokenPairResponse is an issued access/refresh pair.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// CreatedIn is the "iat" of both tokens (unix seconds).
	CreatedIn int64 `json:"created_in"`

	// ExpiresIn is the access token's "exp" (unix seconds).
	ExpiresIn int64 `json:"expires_in"`
}

// IssueTokenRequest is the body of POST /v1/accounts/{account}/tokens/{nature}.
type IssueTokenRequest struct {
	// Duration is the token lifetime in seconds, at least 60.
	Duration      int64          `json:"duration"`
	GraceInterval int64          `json:"grace_interval,omitempty"`
	Claims        map[string]any `json:"claims,omitempty"`
}

// TokenResponse carries a standalone token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ListAccountsResponse carries the registered account ids.
type ListAccountsResponse struct {
	Accounts []string `json:"accounts"`
}

// RemoveAccountResponse reports whether the account existed.
type RemoveAccountResponse struct {
	Removed bool `json:"removed"`
}

// ClaimsResponse carries the claims of a verified bearer token.
type ClaimsResponse struct {
	Claims map[string]any `json:"claims"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains the status of individual components (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates the JWT signing capability status
	Signer string `json:"signer"`
}
