package domain

import (
	"maps"
	"time"
)

// Account is the issuance policy registered for an account id.
type Account struct {
	// Claims are merged into every token issued for the account.
	Claims map[string]any

	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	// GraceInterval delays "nbf" past "iat" when non-zero.
	GraceInterval time.Duration

	// TokenLimit caps the account's live refresh tokens. Zero inherits the
	// store default, a negative value disables the cap.
	TokenLimit int

	// ProviderURL, when set, delegates issuance to a remote provider.
	ProviderURL    string
	RequestTimeout time.Duration
}

// Remote reports whether tokens come from a remote provider.
func (a Account) Remote() bool { return a.ProviderURL != "" }

// Clone copies the account so callers cannot mutate registry state.
func (a Account) Clone() Account {
	a.Claims = maps.Clone(a.Claims)
	if a.Claims == nil {
		a.Claims = map[string]any{}
	}
	return a
}
