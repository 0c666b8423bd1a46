package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
	"github.com/pquerna/otp/totp"
)

// UserService verifies interactive logins and seeds the initial admin.
type UserService struct {
	Store store.Store
}

// Authenticate validates a username/password pair, plus a TOTP code when
// the user has one enrolled. An enrolled user who omits the code gets
// ErrOTPRequired so the login form can ask for it; every other failure is
// the flat ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password, otpCode string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	if user.OTPSecret != nil && *user.OTPSecret != "" {
		otpCode = strings.TrimSpace(otpCode)
		if otpCode == "" {
			return domain.User{}, ErrOTPRequired
		}
		if !totp.Validate(otpCode, *user.OTPSecret) {
			return domain.User{}, ErrInvalidCredentials
		}
	}

	return user, nil
}

// CreateUser hashes the password and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, username, password string, scopes []string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Scopes:       scopes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SeedAdmin creates the configured admin account when the user table is
// empty. Startup-only; a populated directory makes this a no-op.
func (s *UserService) SeedAdmin(ctx context.Context, username, password string) (domain.User, bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return domain.User{}, false, err
	}
	if !empty || username == "" || password == "" {
		return domain.User{}, false, nil
	}

	user, err := s.CreateUser(ctx, username, password,
		[]string{"profile:read", "admin:read", "admin:write"})
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}
