package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenreg/pkg/cryptox"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

func roundTrip(t *testing.T, s jwtx.Signer, v jwtx.Verifier) {
	t.Helper()
	tok, err := s.Sign(jwtx.Claims{"sub": "u1"}, "A1")
	require.NoError(t, err)
	claims, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject())
}

func TestInitKeysGeneratesMissingMaterial(t *testing.T) {
	for _, alg := range []string{jwtx.AlgHS256, jwtx.AlgHS512, jwtx.AlgRS256, jwtx.AlgRS512} {
		t.Run(alg, func(t *testing.T) {
			s, v, err := InitKeys(Config{Algorithm: alg}, slogx.Discard())
			require.NoError(t, err)
			require.Equal(t, alg, s.Alg())
			roundTrip(t, s, v)
		})
	}
}

func TestInitKeysConfiguredMaterial(t *testing.T) {
	t.Run("hmac secret", func(t *testing.T) {
		cfg := Config{Algorithm: jwtx.AlgHS256, HSSecretKey: "0123456789abcdef0123456789abcdef"}
		s, v, err := InitKeys(cfg, slogx.Discard())
		require.NoError(t, err)
		require.Equal(t, []byte(cfg.HSSecretKey), s.VerificationKey())
		roundTrip(t, s, v)
	})

	priv, pub, err := cryptox.GenerateRSAKeyPair(2048)
	require.NoError(t, err)

	t.Run("rsa pair with escaped newlines", func(t *testing.T) {
		cfg := Config{
			Algorithm:     jwtx.AlgRS256,
			RSAPrivateKey: escape(priv),
			RSAPublicKey:  string(pub),
		}
		s, v, err := InitKeys(cfg, slogx.Discard())
		require.NoError(t, err)
		roundTrip(t, s, v)
	})

	t.Run("pkcs1 private key only", func(t *testing.T) {
		pkcs1, err := cryptox.GenerateRSAKeyPKCS1(2048)
		require.NoError(t, err)

		s, v, err := InitKeys(Config{Algorithm: jwtx.AlgRS512, RSAPrivateKey: string(pkcs1)}, slogx.Discard())
		require.NoError(t, err)
		roundTrip(t, s, v)
	})

	t.Run("mismatched public key", func(t *testing.T) {
		_, otherPub, err := cryptox.GenerateRSAKeyPair(2048)
		require.NoError(t, err)

		_, _, err = InitKeys(Config{
			Algorithm:     jwtx.AlgRS256,
			RSAPrivateKey: string(priv),
			RSAPublicKey:  string(otherPub),
		}, slogx.Discard())
		require.Error(t, err)
	})

	t.Run("issuer enforced by verifier", func(t *testing.T) {
		s, v, err := InitKeys(Config{
			Algorithm:     jwtx.AlgRS256,
			RSAPrivateKey: string(priv),
			RSAPublicKey:  string(pub),
			VerifyIssuer:  "tokenreg",
		}, slogx.Discard())
		require.NoError(t, err)

		tok, err := s.Sign(jwtx.Claims{"iss": "someone-else"}, "")
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func escape(pem []byte) string {
	out := make([]byte, 0, len(pem))
	for _, b := range pem {
		if b == '\n' {
			out = append(out, '\\', 'n')
			continue
		}
		out = append(out, b)
	}
	return string(out)
}
