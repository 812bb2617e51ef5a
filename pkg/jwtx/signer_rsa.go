package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// RSASigner implements the Signer interface for RS256 and RS512.
type RSASigner struct {
	method *jwt.SigningMethodRSA
	key    *rsa.PrivateKey
	pubPEM []byte
}

// newRSASigner loads an RSA private key from PEM bytes. Both PKCS1 and PKCS8
// encodings are accepted.
func newRSASigner(alg string, pemKey []byte) (*RSASigner, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse RSA key: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal RSA public key: %w", err)
	}

	method := jwt.SigningMethodRS256
	if alg == AlgRS512 {
		method = jwt.SigningMethodRS512
	}

	return &RSASigner{
		method: method,
		key:    key,
		pubPEM: pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}),
	}, nil
}

func (s *RSASigner) Alg() string { return s.method.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *RSASigner) Sign(claims Claims, kid string) (string, error) {
	return sign(s.method, claims, kid, s.key)
}

// VerificationKey returns the SPKI PEM of the public half.
func (s *RSASigner) VerificationKey() []byte {
	out := make([]byte, len(s.pubPEM))
	copy(out, s.pubPEM)
	return out
}

// Validate does a quick sanity check to make sure we actually have keys.
func (s *RSASigner) Validate() error {
	if s.key == nil || len(s.pubPEM) == 0 {
		return errors.New("jwtx: nil RSA key")
	}
	return s.key.Validate()
}
