package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain (claims.aud). Empty means "don't care".
	Audience []string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// KeyVerifier checks tokens signed with a single algorithm and key.
type KeyVerifier struct {
	alg  string
	key  any
	opts VerifyOptions
}

// NewVerifier creates a verifier for alg. For HS algorithms key is the shared
// secret, for RS algorithms a PEM public key (SPKI or PKCS1).
func NewVerifier(alg string, key []byte, opts VerifyOptions) (*KeyVerifier, error) {
	v := &KeyVerifier{alg: alg, opts: opts}

	switch alg {
	case AlgHS256, AlgHS512:
		if len(key) == 0 {
			return nil, errors.New("jwtx: empty HMAC secret")
		}
		v.key = bytes.Clone(key)
	case AlgRS256, AlgRS512:
		pub, err := jwt.ParseRSAPublicKeyFromPEM(key)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse RSA public key: %w", err)
		}
		v.key = pub
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}

	return v, nil
}

// NewVerifierForSigner builds the verifier matching s.
func NewVerifierForSigner(s Signer, opts VerifyOptions) (*KeyVerifier, error) {
	return NewVerifier(s.Alg(), s.VerificationKey(), opts)
}

// Alg returns the only algorithm this verifier accepts.
func (v *KeyVerifier) Alg() string { return v.alg }

// Verify validates the JWT string and returns its parsed Claims.
func (v *KeyVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.alg}),
		jwt.WithLeeway(v.opts.Leeway),
	)

	token, err := parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != v.alg {
			return nil, ErrAlgMismatch
		}
		return v.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}
	claims := Claims(mc)

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return nil, err
	}

	return claims, nil
}

// classify maps golang-jwt validation errors onto our sentinel kinds, keeping
// the library message for context.
func classify(err error) error {
	var kind error
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		kind = ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		kind = ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		kind = ErrNotYetValid
	case errors.Is(err, ErrAlgMismatch):
		kind = ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		kind = ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		kind = ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		kind = ErrAudience
	default:
		kind = ErrInvalidClaim
	}
	return fmt.Errorf("%w: %v", kind, err)
}
