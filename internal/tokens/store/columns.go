package store

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier rejects table or column names we would not splice
// into SQL.
var ErrInvalidIdentifier = errors.New("store: invalid identifier")

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	tableRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*\.)?[A-Za-z_][A-Za-z0-9_]*$`)
)

// Columns names the token table and its columns. Operators can point the
// service at an existing table.
type Columns struct {
	Table     string
	ID        string
	Account   string
	Token     string
	Algorithm string
	Decoder   string
}

// DefaultColumns matches the embedded migrations.
func DefaultColumns() Columns {
	return Columns{
		Table:     "jwt_tokens",
		ID:        "kid",
		Account:   "account",
		Token:     "token",
		Algorithm: "algorithm",
		Decoder:   "decoder",
	}
}

// IsDefault reports whether the embedded migrations create this layout.
func (c Columns) IsDefault() bool { return c == DefaultColumns() }

func (c Columns) Validate() error {
	if !tableRe.MatchString(c.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, c.Table)
	}
	for name, col := range map[string]string{
		"id":        c.ID,
		"account":   c.Account,
		"token":     c.Token,
		"algorithm": c.Algorithm,
		"decoder":   c.Decoder,
	} {
		if !identRe.MatchString(col) {
			return fmt.Errorf("%w: %s column %q", ErrInvalidIdentifier, name, col)
		}
	}
	return nil
}
