package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenreg/pkg/cryptox"
)

func TestHashAdminKey(t *testing.T) {
	t.Run("argument", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, hashAdminKey([]string{"s3cret"}, strings.NewReader(""), &out))
		require.NoError(t, cryptox.VerifySecret("s3cret", strings.TrimSpace(out.String())))
	})

	t.Run("stdin", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, hashAdminKey(nil, strings.NewReader("from-stdin\n"), &out))
		require.NoError(t, cryptox.VerifySecret("from-stdin", strings.TrimSpace(out.String())))
	})

	t.Run("empty", func(t *testing.T) {
		require.Error(t, hashAdminKey(nil, strings.NewReader("\n"), &bytes.Buffer{}))
		require.Error(t, hashAdminKey([]string{"a", "b"}, strings.NewReader(""), &bytes.Buffer{}))
	})
}
