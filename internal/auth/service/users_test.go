package service

import (
	"testing"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st}
	user := createTestUser(t, st, "alice", "hunter2-hunter2", []string{"profile:read"})

	t.Run("correct credentials", func(t *testing.T) {
		got, err := svc.Authenticate(t.Context(), "alice", "hunter2-hunter2", "")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(t.Context(), "alice", "wrong", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(t.Context(), "mallory", "hunter2-hunter2", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("blank input", func(t *testing.T) {
		_, err := svc.Authenticate(t.Context(), "", "hunter2-hunter2", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Authenticate(t.Context(), "alice", "", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticateWithTOTP(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "hearth-auth", AccountName: "bob"})
	require.NoError(t, err)
	secret := key.Secret()

	// Seed an enrolled user directly; enrolment UX is out of scope here.
	hash, err := cryptox.HashPassword("hunter2-hunter2")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, st.Users().CreateUser(t.Context(), domain.User{
		ID:           idx.New().String(),
		Username:     "bob",
		PasswordHash: hash,
		OTPSecret:    &secret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	t.Run("enrolled user without code is prompted", func(t *testing.T) {
		_, err := svc.Authenticate(t.Context(), "bob", "hunter2-hunter2", "")
		require.ErrorIs(t, err, ErrOTPRequired)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		_, err := svc.Authenticate(t.Context(), "bob", "hunter2-hunter2", "000000")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid code passes", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		got, err := svc.Authenticate(t.Context(), "bob", "hunter2-hunter2", code)
		require.NoError(t, err)
		require.Equal(t, "bob", got.Username)
	})
}

func TestSeedAdmin(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st}

	admin, seeded, err := svc.SeedAdmin(t.Context(), "admin", "correct-horse-battery")
	require.NoError(t, err)
	require.True(t, seeded)
	require.Contains(t, admin.Scopes, "admin:write")

	// A populated directory makes seeding a no-op.
	_, seeded, err = svc.SeedAdmin(t.Context(), "admin2", "correct-horse-battery")
	require.NoError(t, err)
	require.False(t, seeded)
}
