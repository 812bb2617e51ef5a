package jwtx

import (
	"bytes"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// HMACSigner implements the Signer interface for HS256 and HS512.
type HMACSigner struct {
	method *jwt.SigningMethodHMAC
	secret []byte
}

func newHMACSigner(alg string, secret []byte) (*HMACSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty HMAC secret")
	}

	method := jwt.SigningMethodHS256
	if alg == AlgHS512 {
		method = jwt.SigningMethodHS512
	}

	return &HMACSigner{method: method, secret: bytes.Clone(secret)}, nil
}

func (s *HMACSigner) Alg() string { return s.method.Alg() }

func (s *HMACSigner) Sign(claims Claims, kid string) (string, error) {
	return sign(s.method, claims, kid, s.secret)
}

func (s *HMACSigner) VerificationKey() []byte { return bytes.Clone(s.secret) }

func (s *HMACSigner) Validate() error {
	if len(s.secret) == 0 {
		return errors.New("jwtx: nil HMAC secret")
	}
	return nil
}
