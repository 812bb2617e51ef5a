package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tokenreg/pkg/cryptox"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
)

const (
	generatedSecretSize = cryptox.SecretSize256
	generatedRSABits    = 2048
)

// InitKeys builds the signer and verifier for the configured algorithm.
//
// Missing key material is generated and only lives as long as the process:
// every token issued before a restart stops verifying.
func InitKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, jwtx.Verifier, error) {
	opts := jwtx.VerifyOptions{
		Issuer:   cfg.VerifyIssuer,
		Audience: cfg.VerifyAud,
		Leeway:   cfg.VerifyLeeway,
	}

	if jwtx.IsHMAC(cfg.Algorithm) {
		secret := []byte(cfg.HSSecretKey)
		if len(secret) == 0 {
			var err error
			if secret, err = cryptox.GenerateSecret(generatedSecretSize); err != nil {
				return nil, nil, fmt.Errorf("generate HMAC secret: %w", err)
			}
			logger.Warn("JWT_HS_SECRET_KEY not set, generated an ephemeral secret",
				"algorithm", cfg.Algorithm)
		}

		signer, err := jwtx.NewSigner(cfg.Algorithm, secret)
		if err != nil {
			return nil, nil, err
		}
		verifier, err := jwtx.NewVerifierForSigner(signer, opts)
		if err != nil {
			return nil, nil, err
		}
		return signer, verifier, nil
	}

	privPEM := []byte(unescapePEM(cfg.RSAPrivateKey))
	pubPEM := []byte(unescapePEM(cfg.RSAPublicKey))
	if len(privPEM) == 0 {
		var err error
		if privPEM, pubPEM, err = cryptox.GenerateRSAKeyPair(generatedRSABits); err != nil {
			return nil, nil, fmt.Errorf("generate RSA key: %w", err)
		}
		logger.Warn("JWT_RSA_PRIVATE_KEY not set, generated an ephemeral key pair",
			"algorithm", cfg.Algorithm, "bits", generatedRSABits)
	}

	signer, err := jwtx.NewSigner(cfg.Algorithm, privPEM)
	if err != nil {
		return nil, nil, err
	}

	if len(pubPEM) == 0 {
		if pubPEM, err = cryptox.PublicKeyPEM(privPEM); err != nil {
			return nil, nil, fmt.Errorf("derive RSA public key: %w", err)
		}
		logger.Info("derived RSA public key from JWT_RSA_PRIVATE_KEY")
	}

	// A mismatched public key would make every issued token unverifiable.
	check, err := jwtx.NewVerifier(cfg.Algorithm, pubPEM, jwtx.VerifyOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("JWT_RSA_PUBLIC_KEY: %w", err)
	}
	probe, err := signer.Sign(jwtx.Claims{"probe": true}, "")
	if err != nil {
		return nil, nil, err
	}
	if _, err := check.Verify(probe); err != nil {
		return nil, nil, fmt.Errorf("JWT_RSA_PUBLIC_KEY does not match JWT_RSA_PRIVATE_KEY: %w", err)
	}

	verifier, err := jwtx.NewVerifier(cfg.Algorithm, pubPEM, opts)
	if err != nil {
		return nil, nil, err
	}
	return signer, verifier, nil
}

// unescapePEM accepts PEM blocks passed through env files with literal "\n".
func unescapePEM(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
