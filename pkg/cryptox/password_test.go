package cryptox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.Error(t, VerifyPassword("wrong password", hash))
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=19456,t=2,p=1$onlyonepart",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	}

	for _, encoded := range cases {
		require.Error(t, VerifyPassword("anything", encoded), "hash %q", encoded)
	}
}

func TestPepperIsStableAcrossLoads(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pepper")

	SetPepperPath(file)
	first := GetPepper()
	require.NotEmpty(t, first)

	// Re-pointing at the same file must load the identical pepper.
	SetPepperPath(file)
	require.Equal(t, first, GetPepper())
}
