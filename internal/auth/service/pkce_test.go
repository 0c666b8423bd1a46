package service

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePKCE(t *testing.T) {
	t.Parallel()

	t.Run("no challenge no method is fine", func(t *testing.T) {
		challenge, method, err := normalizePKCE("", "")
		require.NoError(t, err)
		require.Empty(t, challenge)
		require.Empty(t, method)
	})

	t.Run("method without challenge is rejected", func(t *testing.T) {
		_, _, err := normalizePKCE("", "S256")
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("defaults to S256 when method omitted", func(t *testing.T) {
		challenge, method, err := normalizePKCE("pkce-challenge", "")
		require.NoError(t, err)
		require.Equal(t, "pkce-challenge", challenge)
		require.Equal(t, "S256", method)
	})

	t.Run("accepts case-insensitive methods", func(t *testing.T) {
		challenge, method, err := normalizePKCE("abc", "plain")
		require.NoError(t, err)
		require.Equal(t, "abc", challenge)
		require.Equal(t, "plain", method)

		challenge, method, err = normalizePKCE("xyz", "s256")
		require.NoError(t, err)
		require.Equal(t, "xyz", challenge)
		require.Equal(t, "S256", method)
	})

	t.Run("rejects unsupported methods", func(t *testing.T) {
		_, _, err := normalizePKCE("abc", "S123")
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestVerifyCodeVerifier(t *testing.T) {
	t.Parallel()

	t.Run("no stored challenge skips verification", func(t *testing.T) {
		require.True(t, verifyCodeVerifier("", "", ""))
		require.True(t, verifyCodeVerifier("", "", "anything"))
	})

	t.Run("stored challenge with missing verifier fails", func(t *testing.T) {
		require.False(t, verifyCodeVerifier("challenge", "S256", ""))
		require.False(t, verifyCodeVerifier("challenge", "plain", "   "))
	})

	t.Run("plain verifier must match challenge", func(t *testing.T) {
		require.True(t, verifyCodeVerifier("verifier", "plain", "verifier"))
		require.False(t, verifyCodeVerifier("verifier", "plain", "other"))
	})

	t.Run("S256 verifier computes hash", func(t *testing.T) {
		verifier := "example-verifier"
		sum := sha256.Sum256([]byte(verifier))
		challenge := base64.RawURLEncoding.EncodeToString(sum[:])

		require.True(t, verifyCodeVerifier(challenge, "S256", verifier))
		require.False(t, verifyCodeVerifier(challenge, "S256", "wrong-verifier"))
	})

	t.Run("unknown stored method never verifies", func(t *testing.T) {
		require.False(t, verifyCodeVerifier("challenge", "S999", "challenge"))
	})
}
