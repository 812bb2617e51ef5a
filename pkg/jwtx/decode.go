package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Decoded is the unverified content of a token.
type Decoded struct {
	Header map[string]any
	Claims Claims
}

// KID returns the "kid" header, if any.
func (d Decoded) KID() string {
	kid, _ := d.Header["kid"].(string)
	return kid
}

// Decode splits and parses a token without checking its signature or any
// time based claims. Only use it for tokens we minted and stored ourselves.
func Decode(token string) (Decoded, error) {
	mc := jwt.MapClaims{}
	t, _, err := jwt.NewParser().ParseUnverified(token, mc)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Decoded{Header: t.Header, Claims: Claims(mc)}, nil
}
