package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestEdDSASignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralEdDSASigner("key-1")
	require.NoError(t, err)

	now := time.Now()
	claims := NewAccessClaims(
		"user-123", "session-456",
		[]string{"profile:read"},
		"nonce-789",
		time.Minute,
		"hearth-auth",
		[]string{"client-abc"},
		now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := signer.Verifier("hearth-auth").Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", got.Subject)
	require.Equal(t, "session-456", got.SID)
	require.Equal(t, "nonce-789", got.Nonce)
	require.Equal(t, []string{"profile:read"}, got.Scopes)
}

func TestEdDSAVerifyRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralEdDSASigner("key-1")
	require.NoError(t, err)
	other, err := NewEphemeralEdDSASigner("key-1")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", nil, "", time.Minute, "hearth-auth", nil, time.Now())
	token, err := other.Sign(claims)
	require.NoError(t, err)

	_, err = signer.Verifier("hearth-auth").Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestEdDSAVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralEdDSASigner("key-1")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", nil, "", time.Minute, "hearth-auth", nil, time.Now().Add(-time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = signer.Verifier("hearth-auth").Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestEdDSAVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralEdDSASigner("key-1")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", nil, "", time.Minute, "somebody-else", nil, time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = signer.Verifier("hearth-auth").Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestSessionCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := &SessionCodec{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "hearth-auth"}

	token, err := codec.Sign("user-1", "sess-1", time.Now())
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "sess-1", claims.SID)
}

func TestSessionCodecSingleFailureMode(t *testing.T) {
	t.Parallel()

	codec := &SessionCodec{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "hearth-auth"}
	tampered := &SessionCodec{Secret: []byte("ffffffffffffffffffffffffffffffff"), Issuer: "hearth-auth"}

	forged, err := tampered.Sign("user-1", "sess-1", time.Now())
	require.NoError(t, err)

	// Garbage, forged, expired, and structurally-empty tokens all yield the
	// same error so the endpoint can't be used as a validity oracle.
	for _, token := range []string{"garbage", "a.b.c", forged, expiredSessionToken(t, codec)} {
		_, err := codec.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSession, "token %q", token)
	}
}

func expiredSessionToken(t *testing.T, codec *SessionCodec) string {
	t.Helper()

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    codec.Issuer,
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		SID: "sess-1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.Secret)
	require.NoError(t, err)
	return token
}
