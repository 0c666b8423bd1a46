package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := NewToken(0)
		require.Error(t, err)

		_, err = NewToken(-4)
		require.Error(t, err)
	})

	t.Run("encodes the requested entropy", func(t *testing.T) {
		token, err := NewToken(Size256)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, Size256)
		require.GreaterOrEqual(t, len(token), 32)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 64 {
			token, err := NewToken(Size128)
			require.NoError(t, err)
			_, dup := seen[token]
			require.False(t, dup)
			seen[token] = struct{}{}
		}
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("token-a")
	b := Fingerprint("token-b")

	require.NotEqual(t, a, b)
	require.Equal(t, a, Fingerprint("token-a"))
	require.Len(t, a, 43) // base64url of 32 bytes, no padding
}
