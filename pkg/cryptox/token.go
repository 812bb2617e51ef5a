package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Sizes in bytes before encoding.
const (
	// SecretSize256 is the default HMAC secret length (256 bits).
	SecretSize256 = 32
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecret returns size cryptographically secure random bytes.
func GenerateSecret(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate random secret: %w", err)
	}
	return buf, nil
}

// RandomAlphanumeric returns a uniformly random string of [a-zA-Z0-9].
func RandomAlphanumeric(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	out := make([]byte, length)
	limit := big.NewInt(int64(len(alphanumeric)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		out[i] = alphanumeric[n.Int64()]
	}
	return string(out), nil
}

// MustRandomAlphanumeric is like RandomAlphanumeric but panics on error.
// The only failure mode is the system RNG breaking.
func MustRandomAlphanumeric(length int) string {
	s, err := RandomAlphanumeric(length)
	if err != nil {
		panic(fmt.Sprintf("cryptox: %v", err))
	}
	return s
}
