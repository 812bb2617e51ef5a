package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Supported signing algorithms.
const (
	AlgHS256 = "HS256"
	AlgHS512 = "HS512"
	AlgRS256 = "RS256"
	AlgRS512 = "RS512"
)

// ErrUnsupportedAlg is returned when an algorithm outside the supported set
// is requested.
var ErrUnsupportedAlg = errors.New("jwtx: unsupported algorithm")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string

	// Sign serialises claims into a signed JWT. When kid is non-empty it is
	// placed in the token header.
	Sign(claims Claims, kid string) (string, error)

	// VerificationKey returns the material a verifier needs to check tokens
	// from this signer: the shared secret for HS algorithms, a PEM encoded
	// public key for RS algorithms.
	VerificationKey() []byte

	Validate() error
}

// SupportedAlg reports whether alg is one of the algorithms we sign with.
func SupportedAlg(alg string) bool {
	switch alg {
	case AlgHS256, AlgHS512, AlgRS256, AlgRS512:
		return true
	}
	return false
}

// IsHMAC reports whether alg uses a shared secret.
func IsHMAC(alg string) bool {
	return alg == AlgHS256 || alg == AlgHS512
}

// NewSigner creates a signer for alg. For HS algorithms key is the raw shared
// secret, for RS algorithms it is a PEM private key (PKCS1 or PKCS8).
func NewSigner(alg string, key []byte) (Signer, error) {
	switch alg {
	case AlgHS256, AlgHS512:
		return newHMACSigner(alg, key)
	case AlgRS256, AlgRS512:
		return newRSASigner(alg, key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
}

func sign(method jwt.SigningMethod, claims Claims, kid string, key any) (string, error) {
	t := jwt.NewWithClaims(method, jwt.MapClaims(claims))
	if kid != "" {
		t.Header["kid"] = kid
	}
	return t.SignedString(key)
}
